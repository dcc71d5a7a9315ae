// Package client talks to a running TimeMate authority over HTTP and follows
// its change notifications.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-retryablehttp"

	"timemate/internal/api"
	"timemate/internal/core/model"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("timemate api: %d %s", e.Code, e.Message)
}

// Client is a display surface: it never ticks, it only asks the authority.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	dialer  *websocket.Dialer
	logger  *slog.Logger
}

// New creates a client for the authority at baseURL, e.g.
// "http://127.0.0.1:7425".
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 100 * time.Millisecond
	httpClient.RetryWaitMax = time.Second
	httpClient.Logger = logger

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		dialer:  websocket.DefaultDialer,
		logger:  logger,
	}
}

// Get fetches the current snapshot.
func (c *Client) Get(ctx context.Context) (model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/timer", nil, &snapshot)
	return snapshot, err
}

// SetInput changes the configured duration.
func (c *Client) SetInput(ctx context.Context, input string) (model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodPut, "/v1/timer/input", api.InputRequest{Input: input}, &snapshot)
	return snapshot, err
}

// Start starts the countdown.
func (c *Client) Start(ctx context.Context) (model.Snapshot, error) {
	return c.control(ctx, "start")
}

// Pause pauses the countdown.
func (c *Client) Pause(ctx context.Context) (model.Snapshot, error) {
	return c.control(ctx, "pause")
}

// Reset resets the countdown to its input.
func (c *Client) Reset(ctx context.Context) (model.Snapshot, error) {
	return c.control(ctx, "reset")
}

// Send issues a control operation in message form.
func (c *Client) Send(ctx context.Context, msg api.Message) (model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/messages", msg, &snapshot)
	return snapshot, err
}

// Presets lists stored presets.
func (c *Client) Presets(ctx context.Context) ([]model.Preset, error) {
	var list []model.Preset
	err := c.do(ctx, http.MethodGet, "/v1/presets", nil, &list)
	return list, err
}

// AddPreset stores a new preset.
func (c *Client) AddPreset(ctx context.Context, request api.PresetRequest) (model.Preset, error) {
	var preset model.Preset
	err := c.do(ctx, http.MethodPost, "/v1/presets", request, &preset)
	return preset, err
}

// RemovePreset deletes a preset.
func (c *Client) RemovePreset(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/presets/"+url.PathEscape(id), nil, nil)
}

// ApplyPreset sets the countdown input from a preset.
func (c *Client) ApplyPreset(ctx context.Context, id string) (model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/presets/"+url.PathEscape(id)+"/apply", nil, &snapshot)
	return snapshot, err
}

// Watch calls onSnapshot with the current snapshot and again after every
// change notification, until ctx is done or the connection drops.
func (c *Client) Watch(ctx context.Context, onSnapshot func(model.Snapshot)) error {
	wsURL, err := c.eventsURL()
	if err != nil {
		return err
	}
	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	snapshot, err := c.Get(ctx)
	if err != nil {
		return err
	}
	onSnapshot(snapshot)

	for {
		var event api.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		if event.Key != model.StateKey {
			continue
		}
		snapshot, err := c.Get(ctx)
		if err != nil {
			return err
		}
		onSnapshot(snapshot)
	}
}

func (c *Client) control(ctx context.Context, op string) (model.Snapshot, error) {
	var snapshot model.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/timer/"+op, nil, &snapshot)
	return snapshot, err
}

func (c *Client) eventsURL() (string, error) {
	parsed, err := url.Parse(c.baseURL + "/v1/timer/events")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}
	return parsed.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
