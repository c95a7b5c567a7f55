package handlers

import (
	"net/http"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The admin middleware already gated this endpoint.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandlers serves the organizer live draw event feed
type EventsHandlers struct {
	broadcaster *messaging.DrawBroadcaster
	logger      *logging.ChanneledLogger
}

// NewEventsHandlers creates event feed handlers with injected dependencies
func NewEventsHandlers(broadcaster *messaging.DrawBroadcaster, logger *logging.ChanneledLogger) *EventsHandlers {
	return &EventsHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetEvents handles GET /api/v1/events (admin only): upgrades to a websocket
// and streams draw events until the client disconnects.
func (h *EventsHandlers) GetEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Events().Error("Websocket upgrade failed", "error", err.Error())
		return
	}

	client := &messaging.Client{
		Conn: conn,
		Send: make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go client.WritePump()
	go h.readPump(client)
}

// readPump drains inbound frames so pings and close frames are processed,
// and unregisters the client when the connection drops.
func (h *EventsHandlers) readPump(client *messaging.Client) {
	defer h.broadcaster.Unregister(client)

	client.Conn.SetReadLimit(512)
	client.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
