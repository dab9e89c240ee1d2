package ws

import (
	"encoding/json"
	"sync"
	"time"

	"tapgame_webapp/internal/logger"
)

// Hub fans state snapshots out to every open connection a user has. The
// channel is one-way: clients receive pushes, anything they send beyond
// pings is discarded.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}

	logger.Debug("ws client registered", "user_id", c.UserID, "client_id", c.ID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}

	logger.Debug("ws client unregistered", "user_id", c.UserID, "client_id", c.ID)
}

// PushState sends an event envelope to all of a user's connections.
// Slow consumers are skipped rather than blocked on.
func (h *Hub) PushState(userID int64, event string, payload any) {
	msg, err := json.Marshal(map[string]any{
		"type":    event,
		"ts":      time.Now().UTC().Format(time.RFC3339),
		"payload": payload,
	})
	if err != nil {
		logger.Error("ws marshal failed", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws send buffer full, dropping", "user_id", userID, "client_id", c.ID)
		}
	}
}
