package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/HorizonteApps/clinic-scheduler/internal/config"
	"github.com/HorizonteApps/clinic-scheduler/internal/fanout"
	"github.com/HorizonteApps/clinic-scheduler/internal/middleware"
)

const wsAuthTimeout = 10 * time.Second

// WSHandler is the realtime channel endpoint. One connection per observer:
// an auth handshake, then a push-only stream of booking and payment events.
// The stream carries notifications to refresh, not a replayable log; clients
// resync the full state over REST after every (re)connect.
type WSHandler struct {
	hub *fanout.Hub
	cfg *config.Config
}

func NewWSHandler(hub *fanout.Hub, cfg *config.Config) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg}
}

type wsAuthFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
	Role  string `json:"role"`
}

type wsFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func (h *WSHandler) Handler() http.Handler {
	return websocket.Handler(h.serve)
}

func (h *WSHandler) serve(conn *websocket.Conn) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(wsAuthTimeout))

	var auth wsAuthFrame
	if err := websocket.JSON.Receive(conn, &auth); err != nil || auth.Type != "auth" {
		return
	}

	_, role, err := middleware.ParseToken(auth.Token, h.cfg.JWTSecret)
	if err != nil || auth.Role != role {
		return
	}

	_ = conn.SetDeadline(time.Time{})

	if err := websocket.JSON.Send(conn, wsFrame{Type: "auth_success"}); err != nil {
		return
	}

	connID := uuid.NewString()
	sub := h.hub.Subscribe(connID, []fanout.Role{fanout.Role(role)})
	defer h.hub.Unsubscribe(connID)

	// Drain the client side only to notice disconnects; the stream is
	// push-only after the handshake.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			var discard json.RawMessage
			if err := websocket.JSON.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				// Unsubscribed or queue overflow: drop the connection so
				// the client reconnects and resyncs.
				return
			}
			if err := websocket.JSON.Send(conn, wsFrame{Type: ev.Type, Data: ev.Payload}); err != nil {
				return
			}
		case <-disconnected:
			return
		}
	}
}
