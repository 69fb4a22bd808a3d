// Package network provides the WebSocket live feed for tournament runs.
package network

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mbarrial/pd-arena/internal/platform/logger"
	"github.com/mbarrial/pd-arena/internal/platform/metrics"
)

// FeedEvent is one message on the live feed. Type is "match", "delivery",
// "run_start" or "run_end"; Payload carries the type-specific body.
type FeedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts feed events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage()
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent serializes a FeedEvent to JSON and sends it to all
// connected clients. Serialization failures are logged and dropped; the
// feed never blocks a running tournament.
func (h *Hub) BroadcastEvent(event FeedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize feed event for WebSocket broadcast: " + err.Error())
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("WebSocket broadcast queue full, dropping feed event")
	}
}
