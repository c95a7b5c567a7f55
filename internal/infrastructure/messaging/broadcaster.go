// Package messaging provides the websocket broadcaster feeding the organizer
// dashboard with live draw events.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// Client represents a single connected organizer dashboard client.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// DrawBroadcaster manages all connected organizer clients and fans out draw
// events as they happen. Slow clients get dropped messages, never backpressure.
type DrawBroadcaster struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan calendar.DrawEvent
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
}

// NewDrawBroadcaster creates a new broadcaster instance.
func NewDrawBroadcaster(logger *logging.ChanneledLogger) *DrawBroadcaster {
	return &DrawBroadcaster{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan calendar.DrawEvent, 64),
		logger:     logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *DrawBroadcaster) Run() {
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Events().Info("Organizer client registered", "clients", b.clientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Events().Info("Organizer client unregistered", "clients", b.clientCount())

		case event := <-b.events:
			b.fanOut(event)
		}
	}
}

// Register queues a client for registration.
func (b *DrawBroadcaster) Register(client *Client) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *DrawBroadcaster) Unregister(client *Client) {
	b.unregister <- client
}

// Broadcast queues a draw event for delivery to all connected clients.
// Non-blocking: if the event queue is full the event is dropped.
func (b *DrawBroadcaster) Broadcast(event calendar.DrawEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Events().Warn("Draw event queue full, event dropped", "type", event.Type, "day", event.Day)
	}
}

func (b *DrawBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// fanOut delivers one event to every connected client.
func (b *DrawBroadcaster) fanOut(event calendar.DrawEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.Events().Error("Error marshaling draw event", "error", err.Error(), "type", event.Type)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
			// Slow client, skip this event for it.
		}
	}
}

// WritePump pumps queued messages out to a single websocket connection.
// Runs as one goroutine per client; exits when the Send channel closes.
func (c *Client) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
