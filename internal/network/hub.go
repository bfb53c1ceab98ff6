// Package network pushes the activity feed to connected dashboards over
// WebSocket. The feed is read-only: play commands go through the HTTP API,
// never through the socket.
package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
)

// Hub maintains the set of active clients and broadcasts activity to them.
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
		broadcast:  make(chan []byte),
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
				if !client.wants(message) {
					continue
				}
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

// BroadcastActivity serializes one activity entry and sends it to all
// connected clients.
func (h *Hub) BroadcastActivity(a events.Activity) {
	payload, err := json.Marshal(a)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("Failed to serialize activity for WebSocket broadcast: " + err.Error())
		return
	}
	h.broadcast <- payload
}

// StartActivityFeed spawns a goroutine that polls the activity log and pushes
// new entries to the Hub. The Hub stays independent from the engine's write
// path while picking up the same entries.
func (h *Hub) StartActivityFeed(ctx context.Context, activity *events.Log, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		lastSeen := activity.Len()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				all := activity.Replay()
				if len(all) <= lastSeen {
					continue
				}
				for _, a := range all[lastSeen:] {
					h.BroadcastActivity(a)
				}
				lastSeen = len(all)
			}
		}
	}()
}
