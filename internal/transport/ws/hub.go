package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"nhooyr.io/websocket"

	"github.com/vedran77/switchboard/internal/observability"
)

// Hub is the registry of live relay connections. One mutex serializes
// registration changes and broadcast iteration, so every client observes
// broadcasts in the same order.
type Hub struct {
	mu      sync.Mutex
	clients []*Client

	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{logger: logger, metrics: metrics}
}

// Connect registers c and announces it to every client, c included.
func (h *Hub) Connect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients = append(h.clients, c)
	h.metrics.ConnectionOpened()
	h.logger.Info("ws hub: client connected", "conn_id", c.ID().String(), "label", c.Label(), "total", len(h.clients))

	h.broadcastLocked(JoinedEvent(c.Label()))
}

// Disconnect unregisters c and returns its label, or FallbackLabel when c was
// not registered. The caller announces the departure.
func (h *Hub) Disconnect(c *Client) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := slices.Index(h.clients, c)
	if i < 0 {
		return FallbackLabel
	}
	h.clients = slices.Delete(h.clients, i, i+1)
	h.metrics.ConnectionClosed()
	h.logger.Info("ws hub: client disconnected", "conn_id", c.ID().String(), "label", c.Label(), "total", len(h.clients))
	return c.Label()
}

// Broadcast queues event for every registered client in registration order.
// A client that cannot take it is logged and skipped; it stays registered
// until its own read loop ends.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(event)
}

func (h *Hub) broadcastLocked(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ws hub: marshal error", "error", err)
		return
	}
	h.metrics.Broadcast()

	for _, c := range h.clients {
		if err := c.enqueue(data); err != nil {
			h.logger.Warn("ws hub: delivery failed", "conn_id", c.ID().String(), "label", c.Label(), "error", err)
			h.metrics.Delivery("dropped")
			continue
		}
		h.metrics.Delivery("ok")
	}
}

// Len is the number of registered connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Labels returns the registered labels in registration order.
func (h *Hub) Labels() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	labels := make([]string, len(h.clients))
	for i, c := range h.clients {
		labels[i] = c.Label()
	}
	return labels
}

// Shutdown closes every live connection with StatusGoingAway and waits for
// the close handshakes or ctx, whichever ends first. Each connection's read
// loop then unregisters it.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	clients := slices.Clone(h.clients)
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range clients {
		if c.conn == nil {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
