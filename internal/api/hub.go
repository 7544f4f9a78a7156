package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/davorpavlov/props-engine/internal/metrics"
	"github.com/davorpavlov/props-engine/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The stream is read-only and carries no credentials
		return true
	},
}

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 30 * time.Second
	clientBuffer   = 64
	maxMessageSize = 512
)

// StreamMessage is the envelope pushed to websocket clients
type StreamMessage struct {
	Type      string      `json:"type"` // "connected", "analysis", "ping"
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan StreamMessage
}

// Hub fans completed analyses out to connected websocket clients. Slow
// clients are dropped rather than allowed to stall a run.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan models.PropAnalysis
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run exits
	logger     *logrus.Logger
	mu         sync.RWMutex
}

// NewHub creates a websocket hub
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan models.PropAnalysis, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run drives the hub until the context is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()

			metrics.UpdateWebsocketClients(float64(count))
			h.logger.WithField("clients", count).Info("Websocket client connected")
			h.send(c, StreamMessage{Type: "connected", Timestamp: time.Now().UTC()})

		case c := <-h.unregister:
			h.drop(c)

		case analysis := <-h.broadcast:
			msg := StreamMessage{
				Type:      "analysis",
				Data:      analysis.Rounded(),
				Timestamp: time.Now().UTC(),
			}
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				h.send(c, msg)
			}

		case <-ticker.C:
			msg := StreamMessage{Type: "ping", Timestamp: time.Now().UTC()}
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				h.send(c, msg)
			}
		}
	}
}

// Publish queues an analysis for broadcast. Drops the result when the
// buffer is full so publishing never blocks an analysis run.
func (h *Hub) Publish(analysis models.PropAnalysis) {
	select {
	case h.broadcast <- analysis:
	default:
		h.logger.Warn("Websocket broadcast buffer full, dropping analysis")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request and attaches the client to the hub
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan StreamMessage, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) send(c *client, msg StreamMessage) {
	select {
	case c.send <- msg:
	default:
		h.drop(c)
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	close(c.send)
	_ = c.conn.Close()
	metrics.UpdateWebsocketClients(float64(count))
	h.logger.WithField("clients", count).Info("Websocket client disconnected")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}

// disconnect hands a dead client back to the Run loop. Once Run has
// exited nobody services the unregister channel, so the send must not
// block then.
func (h *Hub) disconnect(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// writePump serializes queued messages onto the connection
func (h *Hub) writePump(c *client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.disconnect(c)
			return
		}
	}
}

// readPump discards inbound frames and detects disconnects
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.disconnect(c)
			return
		}
	}
}
