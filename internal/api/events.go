package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	eventsWriteWait  = 10 * time.Second
	eventsPongWait   = 60 * time.Second
	eventsReadLimit  = 512
	eventsPingFactor = 9 // ping every 9/10 of the pong wait
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: sameOrigin,
}

// handleEvents streams change notifications. Observers re-fetch
// GET /v1/timer on every event.
func (srv *Server) handleEvents(c echo.Context) error {
	// subscribe first so nothing published after the handshake is missed
	sub := srv.hub.Subscribe(4)
	defer srv.hub.Unsubscribe(sub.ID)

	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	srv.logger.Info("observer connected", "id", sub.ID)

	// a peer that stops answering pings is dropped after pongWait
	pongWait := srv.eventsPongWait
	ws.SetReadLimit(eventsReadLimit)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	disconnected := make(chan struct{})
	go func() {
		for {
			if _, _, err := ws.NextReader(); err != nil {
				close(disconnected)
				return
			}
		}
	}()

	ping := time.NewTicker(pongWait * eventsPingFactor / 10)
	defer ping.Stop()

	for {
		select {
		case <-disconnected:
			srv.logger.Info("observer disconnected", "id", sub.ID)
			return nil
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				srv.logger.Info("websocket ping error", "err", err)
				return nil
			}
		case notification, ok := <-sub.C:
			if !ok {
				ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(eventsWriteWait))
				return nil
			}
			ws.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			event := ChangeEvent{Type: EventChanged, Key: notification.Key, At: notification.At}
			if err := ws.WriteJSON(event); err != nil {
				srv.logger.Info("websocket write error", "err", err)
				return nil
			}
		}
	}
}

// sameOrigin accepts requests without an Origin header (CLI clients) and
// browser requests from the API's own host. Other web pages may not drive
// or watch the timer.
func sameOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, req.Host)
}

func originGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !sameOrigin(c.Request()) {
			return echo.NewHTTPError(http.StatusForbidden, "cross-origin request rejected")
		}
		return next(c)
	}
}
