package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/drowsy/pkg/logger"
	"github.com/okian/drowsy/pkg/metrics"
)

// Live feed timing.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	defaultSendBuf = 256
)

// Message types of the live feed.
const (
	MessageWelcome = "welcome"
	MessageFrame   = "frame"
)

// LiveMessage is the envelope of every live feed message.
type LiveMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Payload   any    `json:"payload,omitempty"`
}

// HubOption applies a configuration option to the Hub.
type HubOption func(*Hub)

// WithSendBuffer sets how many messages may queue per client before the
// client is dropped as too slow.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuf = n
		}
	}
}

// WithHubLogger sets the hub logger.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frame results out to websocket clients. Publish never blocks on
// a client: one whose buffer is full is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	sendBuf  int
	logger   logger.Logger

	mu      sync.RWMutex
	clients map[*liveClient]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sendBuf: defaultSendBuf,
		logger:  logger.Nop(),
		clients: make(map[*liveClient]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades GET /ws to a websocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		metrics.RecordErrorByEndpoint("ws", r.Method, "upgrade")
		return
	}

	c := &liveClient{conn: conn, send: make(chan []byte, h.sendBuf)}
	if msg, err := encode(MessageWelcome, map[string]string{"message": "connected to drowsiness monitor"}); err == nil {
		c.send <- msg
	}
	if !h.add(c) {
		_ = conn.Close()
		return
	}
	h.logger.Info(r.Context(), "live client connected", logger.String("remote", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// Publish sends v as a frame message to every client.
func (h *Hub) Publish(_ context.Context, v any) {
	msg, err := encode(MessageFrame, v)
	if err != nil {
		h.logger.Error(context.Background(), "encode live message", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *liveClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateLiveClients(len(h.clients))
	return true
}

func (h *Hub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes the send channel; writePump then closes the socket.
func (h *Hub) removeLocked(c *liveClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateLiveClients(len(h.clients))
}

// readPump discards client messages and keeps the read deadline fresh.
func (h *Hub) readPump(c *liveClient) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug(context.Background(), "live client read error", logger.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *liveClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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

func encode(kind string, payload any) ([]byte, error) {
	return json.Marshal(LiveMessage{Type: kind, Timestamp: time.Now().Unix(), Payload: payload})
}
