// Package bridge runs the localhost WebSocket server the companion
// extension connects to. The extension pushes an event whenever the
// active tab changes or finishes loading; the panel reconciles on each.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/mvens/tubefrage/internal/applog"
	"nhooyr.io/websocket"
)

// TabEvent is a message from the extension about the active tab.
type TabEvent struct {
	Type  string `json:"type"` // "tab.activated" or "tab.updated"
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	TabID int    `json:"tabId,omitempty"`
}

// EventActivated and EventUpdated are the two event types the extension
// sends, mirroring the browser's tab-activation and tab-update-complete
// callbacks.
const (
	EventActivated = "tab.activated"
	EventUpdated   = "tab.updated"
)

// Server manages the WebSocket connection to the extension.
type Server struct {
	port   int
	events chan TabEvent
	mu     sync.Mutex
	conn   *websocket.Conn
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port:   port,
		events: make(chan TabEvent, 64),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Events returns the channel of tab events from the extension.
func (s *Server) Events() <-chan TabEvent {
	return s.events
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev TabEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			if ev.Type != EventActivated && ev.Type != EventUpdated {
				applog.Info("ws.skip", "type", ev.Type)
				continue
			}
			applog.Info("ws.recv", "type", ev.Type, "url", ev.URL)
			select {
			case s.events <- ev:
			default:
				// Channel full: the panel only cares about the latest
				// active tab, so dropping is safe.
			}
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("bridge.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
