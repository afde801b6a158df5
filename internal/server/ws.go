package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
)

const (
	// clientBuffer is the number of pending messages per client before new
	// results are dropped for that client.
	clientBuffer = 16
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ResultsHub pushes every recognition result to connected WebSocket clients.
// It implements recognizer.Publisher.
type ResultsHub struct {
	clients map[*hubClient]struct{}
	mu      sync.RWMutex
	logger  *slog.Logger
}

var _ recognizer.Publisher = (*ResultsHub)(nil)

// NewResultsHub creates an empty hub.
func NewResultsHub(logger *slog.Logger) *ResultsHub {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultsHub{
		clients: make(map[*hubClient]struct{}),
		logger:  logger,
	}
}

// Clients returns the number of connected clients.
func (h *ResultsHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends r to every client without blocking. Slow clients miss
// results rather than stalling recognition.
func (h *ResultsHub) Publish(r recognizer.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(r)
	if err != nil {
		h.logger.Error("failed to encode result", "error", err)
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("dropping result for slow client", "remote", c.conn.RemoteAddr().String())
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ResultsHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "error", err)
		return
	}

	c := &hubClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go h.writePump(c, done)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	close(c.send)
	<-done
	conn.Close()
}

// writePump is the only writer for c.conn.
func (h *ResultsHub) writePump(c *hubClient, done chan<- struct{}) {
	defer close(done)

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			// Unblock the reader so the client is removed.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
