package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SnapshotFunc returns the current course list sent to new clients.
type SnapshotFunc func(ctx context.Context) (any, error)

// Handler upgrades requests to the live seat feed
type Handler struct {
	hub      *Hub
	snapshot SnapshotFunc
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, snapshot SnapshotFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		snapshot: snapshot,
		logger:   logger,
	}
}

// HandleConnection upgrades to a WebSocket, sends the current course list and
// subscribes the client to seat updates.
func (h *Handler) HandleConnection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	courses, err := h.snapshot(ctx)
	cancel()
	if err != nil {
		_ = c.Error(err)
		return
	}

	initial, err := json.Marshal(SnapshotMessage{Type: TypeSnapshot, Courses: courses})
	if err != nil {
		_ = c.Error(err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		addr:   conn.RemoteAddr().String(),
		send:   make(chan []byte, sendBuffer),
		logger: h.logger,
	}
	client.send <- initial
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().Str("remoteAddr", client.addr).Msg("Seat feed connection established")
}
