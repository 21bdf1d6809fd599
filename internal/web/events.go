package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	eventsPingInterval = 30 * time.Second
	eventsWriteTimeout = 10 * time.Second
)

// eventsHandler pushes a state snapshot on connect and after every change.
func eventsHandler(deps APIV1Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}
	if deps.DevMode {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied to the client.
			return
		}
		defer func() { _ = conn.Close() }()

		// Drain client frames so close and pong control messages are processed.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ping := time.NewTicker(eventsPingInterval)
		defer ping.Stop()

		for {
			changed := deps.Store.Changed()
			snap := deps.Store.Snapshot()
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteTimeout))
			if err := conn.WriteJSON(newStateResponse(snap)); err != nil {
				return
			}

		wait:
			for {
				select {
				case <-r.Context().Done():
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
						time.Now().Add(time.Second))
					return
				case <-closed:
					return
				case <-ping.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteTimeout)); err != nil {
						return
					}
				case <-changed:
					break wait
				}
			}
		}
	}
}
