package realtime

import (
	"encoding/json"
	"sync"

	"boxing-arena-api/internal/arena"
)

// Client represents a single websocket client connection.
// We keep it minimal here; the actual network conn is managed in the ws handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// BoutEvent is the payload pushed to subscribers after every bout.
type BoutEvent struct {
	Type    string           `json:"type"`
	Version int              `json:"version"`
	Bout    arena.BoutResult `json:"bout"`
}

// Hub maintains active subscriber connections, grouped by user ID.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{userIDToClients: make(map[string]map[Client]struct{})}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// ClientCount returns the number of connected clients across all users.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.userIDToClients {
		n += len(clients)
	}
	return n
}

// BroadcastAll sends a message to every connected client and returns how
// many accepted it. Failed clients are cleaned up by their handler.
func (h *Hub) BroadcastAll(message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, clients := range h.userIDToClients {
		for c := range clients {
			if c.Send(message) {
				sent++
			}
		}
	}
	return sent
}

// PublishBout broadcasts a bout_finished event.
func (h *Hub) PublishBout(res arena.BoutResult) error {
	payload, err := json.Marshal(BoutEvent{Type: "bout_finished", Version: 1, Bout: res})
	if err != nil {
		return err
	}
	h.BroadcastAll(payload)
	return nil
}
