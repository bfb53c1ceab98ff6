package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client holds one dashboard connection. An empty room filter receives the
// whole feed.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu   sync.Mutex
	room string
}

// NewClient creates a new WebSocket client. roomID may be empty for an
// unfiltered feed.
func NewClient(hub *Hub, conn *websocket.Conn, roomID string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		room: roomID,
	}
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// wants reports whether the client's room filter matches the feed entry.
func (c *Client) wants(message []byte) bool {
	c.mu.Lock()
	room := c.room
	c.mu.Unlock()
	if room == "" {
		return true
	}
	var entry struct {
		RoomID string `json:"room_id"`
	}
	if err := json.Unmarshal(message, &entry); err != nil {
		return false
	}
	// Entries without a room (migrations, template edits) go to everyone.
	return entry.RoomID == "" || entry.RoomID == room
}

// subscribeCommand is the only message the feed accepts from the peer.
type subscribeCommand struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// ReadPump consumes subscription changes from the peer until the connection
// drops, then unregisters the client.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.Get().RecordWSError()
				c.hub.logger.Error("WebSocket read failed: " + err.Error())
			}
			break
		}

		var cmd subscribeCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Warn("Failed to parse WebSocket command: " + err.Error())
			continue
		}
		if cmd.Type != "subscribe" {
			c.hub.logger.Warn("Unknown WebSocket command type: " + cmd.Type)
			continue
		}
		c.mu.Lock()
		c.room = cmd.RoomID
		c.mu.Unlock()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
