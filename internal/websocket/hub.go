package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"taskhub/pkg/logger"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one open connection of a user.
type Client struct {
	UserID string
	Conn   Conn
	Mu     sync.Mutex
}

// Hub tracks open connections per user and pushes notifications to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if ok {
		if _, present := set[c]; !present {
			ok = false
		}
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	if ok {
		_ = c.Conn.Close()
	}
}

// Connections returns the number of open connections for userID.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends payload as JSON to every connection of userID. Delivery is
// best effort: connections that fail to accept the write are dropped.
func (h *Hub) Publish(userID string, payload any) {
	message, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorLogger.Error("Failed to encode websocket payload", zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		c.Mu.Unlock()
		if err != nil {
			logger.ContextLogger.Warn("Dropping websocket client", zap.String("user_id", userID), zap.Error(err))
			h.Unregister(c)
		}
	}
}
