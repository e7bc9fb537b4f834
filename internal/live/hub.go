// Package live streams admin export snapshots to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/p-n-ai/pai-questions/internal/admin"
)

const writeTimeout = 5 * time.Second

// Hub fans the latest snapshot out to every connected subscriber. A slow
// subscriber only ever misses intermediate snapshots, never the latest one.
type Hub struct {
	mu      sync.RWMutex
	clients map[*subscriber]struct{}
	latest  []byte
}

type subscriber struct {
	msgs chan []byte
}

// NewHub creates a hub that greets new subscribers with initial.
func NewHub(initial admin.Snapshot) *Hub {
	h := &Hub{clients: make(map[*subscriber]struct{})}
	h.latest = encode(initial)
	return h
}

// Publish replaces the latest snapshot and pushes it to all subscribers.
func (h *Hub) Publish(snap admin.Snapshot) {
	msg := encode(snap)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = msg
	for c := range h.clients {
		c.offer(msg)
	}
}

// Subscribers returns the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and streams snapshots until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())

	c := h.register()
	defer h.unregister(c)

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.msgs:
			if err := write(ctx, conn, msg); err != nil {
				slog.Debug("live subscriber dropped", "error", err)
				return
			}
		}
	}
}

func (h *Hub) register() *subscriber {
	c := &subscriber{msgs: make(chan []byte, 1)}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	c.offer(h.latest)
	slog.Info("live subscriber connected", "subscribers", len(h.clients))
	return c
}

func (h *Hub) unregister(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// offer must be called with the hub lock held.
func (c *subscriber) offer(msg []byte) {
	select {
	case c.msgs <- msg:
		return
	default:
	}
	// Replace the stale pending message.
	select {
	case <-c.msgs:
	default:
	}
	select {
	case c.msgs <- msg:
	default:
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

func encode(snap admin.Snapshot) []byte {
	data, _ := json.Marshal(snap)
	return data
}
