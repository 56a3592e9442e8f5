package inspect

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/bindvar/internal/presence"
)

// FrameType identifies a websocket frame.
type FrameType string

const (
	FrameHello    FrameType = "hello"
	FrameChange   FrameType = "change"
	FramePresence FrameType = "presence"
)

// Frame is sent to inspector clients as a JSON text message.
type Frame struct {
	Type     FrameType          `json:"type"`
	Vars     []Snapshot         `json:"vars,omitempty"`
	Var      *Snapshot          `json:"var,omitempty"`
	Presence *presence.Activity `json:"presence,omitempty"`
}

const writeTimeout = 5 * time.Second

// Hub streams snapshot changes to websocket clients.
type Hub struct {
	registry *Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

var _ presence.Publisher = (*Hub)(nil)

// NewHub creates a hub that broadcasts every change stored in reg.
func NewHub(reg *Registry, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		registry: reg,
		logger:   logger.With("component", "inspect"),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // read-only local tooling
			},
		},
	}
	reg.OnChange(func(s Snapshot) {
		h.broadcast(Frame{Type: FrameChange, Var: &s})
	})
	return h
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
// The first frame is a hello carrying every current snapshot.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	// Holding the client lock across registration and the hello keeps any
	// concurrent change frame queued behind it.
	c.mu.Lock()
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	hello, err := json.Marshal(Frame{Type: FrameHello, Vars: h.registry.Snapshots()})
	if err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err = conn.WriteMessage(websocket.TextMessage, hello)
	}
	c.mu.Unlock()
	if err != nil {
		h.drop(c)
		return
	}

	// Clients never send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
}

// Publish implements presence.Publisher.
func (h *Hub) Publish(ctx context.Context, a presence.Activity) error {
	h.broadcast(Frame{Type: FramePresence, Presence: &a})
	return nil
}

func (h *Hub) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.logger.Warn("inspect frame encode failed", "type", f.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.conn.Close()
		delete(h.clients, c)
	}
}
