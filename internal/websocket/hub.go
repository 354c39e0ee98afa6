package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Message is a change notification. Extra carries the household_id the
// change belongs to.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity"`
	Action string         `json:"action"`
	ID     int64          `json:"id,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, id int64, extra map[string]any) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
		Extra:  extra,
	}
}

// HouseholdMessage is NewMessage tagged with the household it concerns.
func HouseholdMessage(entity, action string, id, householdID int64) Message {
	return NewMessage(entity, action, id, map[string]any{"household_id": householdID})
}

// Hub maintains the set of active clients and fans messages out to the
// clients of the affected household.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Publish sends msg to every client of householdID and to admin clients.
func (h *Hub) Publish(householdID int64, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal message", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if !c.wants(householdID) {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Debug("dropped message", "user_id", c.userID, "type", msg.Type)
		}
	}
}

// Rescope moves every connection of userID to householdID. Zero leaves the
// connections scoped to no household.
func (h *Hub) Rescope(userID, householdID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.userID == userID {
			c.householdID = householdID
		}
	}
}

// Disconnect closes every connection of userID. Each client unregisters
// itself once its read pump sees the close.
func (h *Hub) Disconnect(userID int64, reason string) {
	h.mu.RLock()
	var conns []*Client
	for c := range h.clients {
		if c.userID == userID {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range conns {
		c.close(reason)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
