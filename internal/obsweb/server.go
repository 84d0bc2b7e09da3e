package obsweb

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block before the
// connection is considered dead.
const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	// Observability is read from any origin the operator points a browser
	// at; there is nothing to authorize or mutate through this endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterRoutes mounts the read-only observability endpoint at
// "/events" on mux.
func RegisterRoutes(mux *http.ServeMux, bus *Bus, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		serveWS(w, r, bus, logger)
	})
}

func serveWS(w http.ResponseWriter, r *http.Request, bus *Bus, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("obsweb: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch := bus.subscribe(64)
	defer bus.unsubscribe(ch)

	// Drain and discard anything the client sends; this endpoint is
	// read-only, but we still need to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case env, ok := <-ch:
			if !ok {
				return
			}
			data, err := env.marshal()
			if err != nil {
				logger.Warn("obsweb: marshal failed", "error", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
