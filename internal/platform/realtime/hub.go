// Package realtime fans application events out to dashboard websocket
// subscribers. Delivery is best effort: a slow or dead subscriber is
// dropped, never waited on.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	// RequestAnalytics is the only inbound message type; it asks for an
	// immediate snapshot reply to the requesting client.
	RequestAnalytics = "REQUEST_ANALYTICS"
)

// Envelope is the wire format for every outbound event.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SnapshotProvider computes the current analytics snapshot for on-demand
// requests from a single client.
type SnapshotProvider func(ctx context.Context) (any, error)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	provider SnapshotProvider
	logger   *slog.Logger
	upgrader websocket.Upgrader

	// baseCtx outlives any single request; connections survive the
	// upgrade handler returning.
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Dashboards are served from other origins in local setups.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetSnapshotProvider wires the analytics read model in after construction;
// bootstrap builds the hub before the analytics module exists.
func (h *Hub) SetSnapshotProvider(provider SnapshotProvider) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.provider = provider
}

// Publish marshals one envelope and offers it to every connected client.
// Clients whose buffers are full miss the event; the next periodic
// snapshot heals them.
func (h *Hub) Publish(eventType string, data any) {
	payload, err := json.Marshal(Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("event marshal failed",
			"event", "realtime_publish_failed",
			"module", "platform/realtime",
			"type", eventType,
			"error", err.Error(),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			"event", "realtime_upgrade_failed",
			"module", "platform/realtime",
			"error", err.Error(),
		)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(h.baseCtx, c)
}

// Close stops serving snapshot requests and disconnects every client.
func (h *Hub) Close() {
	h.cancel()
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		close(c.send)
	}
	_ = c.conn.Close()
}

func (h *Hub) readPump(ctx context.Context, c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var inbound struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &inbound); err != nil {
			continue
		}
		if inbound.Type == RequestAnalytics {
			h.replySnapshot(ctx, c)
		}
	}
}

// replySnapshot answers a single client's on-demand request without
// broadcasting to everyone else.
func (h *Hub) replySnapshot(ctx context.Context, c *client) {
	h.mu.RLock()
	provider := h.provider
	h.mu.RUnlock()
	if provider == nil {
		return
	}

	snapshot, err := provider(ctx)
	if err != nil {
		h.logger.Error("snapshot request failed",
			"event", "realtime_snapshot_request_failed",
			"module", "platform/realtime",
			"error", err.Error(),
		)
		return
	}
	payload, err := json.Marshal(Envelope{
		Type:      "ANALYTICS_UPDATE",
		Data:      snapshot,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
