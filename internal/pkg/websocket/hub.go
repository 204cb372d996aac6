package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Message types sent to feed clients
const (
	TypeSnapshot = "snapshot"
	TypeSeats    = "seats"
)

// SnapshotMessage is sent once when a client connects
type SnapshotMessage struct {
	Type    string `json:"type"`
	Courses any    `json:"courses"`
}

// SeatsMessage is broadcast after every admitted booking
type SeatsMessage struct {
	Type   string `json:"type"`
	Course any    `json:"course"`
}

// Hub maintains the set of active clients and broadcasts seat updates to them.
// Broadcast never blocks the caller; clients that cannot keep up are dropped.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// mu guards clients for readers outside Run
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug().Str("addr", client.addr).Msg("Client registered")

		case client := <-h.unregister:
			h.remove(client)

		case data := <-h.broadcast:
			h.fanOut(data)
		}
	}
}

// join and leave are no-ops once Run has returned.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Debug().Str("addr", client.addr).Msg("Client unregistered")
	}
}

func (h *Hub) fanOut(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			delete(h.clients, client)
			close(client.send)
			h.logger.Warn().Str("addr", client.addr).Msg("Dropped slow seat feed client")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// Broadcast queues v for every connected client. If the hub is backed up the
// update is discarded; the next one carries fresh counts anyway.
func (h *Hub) Broadcast(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal seat feed message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn().Msg("Seat feed backlog full, update dropped")
	}
}

// BroadcastSeats publishes the current state of one course
func (h *Hub) BroadcastSeats(course any) {
	h.Broadcast(SeatsMessage{Type: TypeSeats, Course: course})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
