package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timemate/internal/core/countdown"
	"timemate/internal/core/model"
	"timemate/internal/core/observer"
	"timemate/internal/core/presets"
	"timemate/internal/storage"
)

type testEnv struct {
	server *httptest.Server
	timer  *countdown.Service
	hub    *observer.Hub
}

func setupTestEnv(t *testing.T, configure ...func(*Server)) testEnv {
	t.Helper()

	hub := observer.NewHub()
	timer := countdown.New(model.CountdownConfig{TickInterval: time.Hour}, countdown.Options{Publisher: hub})
	registry := prometheus.NewRegistry()
	srv := NewServer(timer, presets.NewManager(storage.NewMemoryStore()), hub, Options{
		Registerer: registry,
		Gatherer:   registry,
	})

	for _, fn := range configure {
		fn(srv)
	}

	server := httptest.NewServer(srv)
	t.Cleanup(func() {
		hub.Close()
		server.Close()
		timer.Close()
	})
	return testEnv{server: server, timer: timer, hub: hub}
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestTimerEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	base := env.server.URL + "/v1/timer"

	var snapshot model.Snapshot
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base, nil, &snapshot))
	assert.Equal(t, model.DefaultSnapshot(), snapshot)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPut, base+"/input", InputRequest{Input: "00:00:10"}, &snapshot))
	assert.Equal(t, "00:00:10", snapshot.Input)
	assert.Equal(t, 10, snapshot.Remaining)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/start", nil, &snapshot))
	assert.True(t, snapshot.Running)
	assert.NotNil(t, snapshot.LastUpdate)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/pause", nil, &snapshot))
	assert.False(t, snapshot.Running)

	env.timer.SetInput("00:00:30")
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/reset", nil, &snapshot))
	assert.Equal(t, 30, snapshot.Remaining)
	assert.False(t, snapshot.Running)
}

func TestMessageEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	url := env.server.URL + "/v1/messages"

	var snapshot model.Snapshot
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, Message{Type: MessageSetInput, Input: "00:01:00"}, &snapshot))
	assert.Equal(t, 60, snapshot.Remaining)

	for _, kind := range []string{MessageGet, MessageGetTimer} {
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, Message{Type: kind}, &snapshot))
		assert.Equal(t, "00:01:00", snapshot.Input)
	}

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, Message{Type: MessageStart}, &snapshot))
	assert.True(t, snapshot.Running)
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, Message{Type: MessagePause}, &snapshot))
	assert.False(t, snapshot.Running)
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, url, Message{Type: MessageReset}, &snapshot))
	assert.Equal(t, 60, snapshot.Remaining)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, url, Message{Type: "launch"}, nil))
}

func TestMalformedBodyIsRejected(t *testing.T) {
	env := setupTestEnv(t)

	req, err := http.NewRequest(http.MethodPut, env.server.URL+"/v1/timer/input", strings.NewReader("{nope"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, model.DefaultInput, env.timer.Get().Input)
}

func TestPresetEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	base := env.server.URL + "/v1/presets"

	var preset model.Preset
	require.Equal(t, http.StatusCreated, doJSON(t, http.MethodPost, base, PresetRequest{Name: "Tea", Duration: "0:4:0"}, &preset))
	assert.Equal(t, "00:04:00", preset.Duration)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, base, PresetRequest{Name: ""}, nil))

	var list []model.Preset
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, base, nil, &list))
	assert.Equal(t, []model.Preset{preset}, list)

	var snapshot model.Snapshot
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodPost, base+"/"+preset.ID+"/apply", nil, &snapshot))
	assert.Equal(t, "00:04:00", snapshot.Input)
	assert.Equal(t, 240, snapshot.Remaining)

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, base+"/"+preset.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, base+"/"+preset.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodPost, base+"/"+preset.ID+"/apply", nil, nil))
}

func TestEventsStreamChangeNotifications(t *testing.T) {
	env := setupTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/timer/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	env.timer.SetInput("00:00:05")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event ChangeEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventChanged, event.Type)
	assert.Equal(t, model.StateKey, event.Key)
}

func TestCrossOriginRequestsAreRejected(t *testing.T) {
	env := setupTestEnv(t)

	post := func(origin string) int {
		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/v1/timer/start", nil)
		require.NoError(t, err)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusForbidden, post("http://evil.example"))
	assert.False(t, env.timer.Running())

	assert.Equal(t, http.StatusOK, post(env.server.URL))
	assert.True(t, env.timer.Running())
	env.timer.Pause()

	assert.Equal(t, http.StatusOK, post(""))

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/timer/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSilentObserverIsDropped(t *testing.T) {
	env := setupTestEnv(t, func(srv *Server) {
		srv.eventsPongWait = 100 * time.Millisecond
	})

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/timer/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	// never reading means pings go unanswered
	assert.Eventually(t, func() bool { return env.hub.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestEnv(t)

	var status GenericStatus
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, env.server.URL+"/_health", nil, &status))
	assert.Equal(t, "ok", status.Status)

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
