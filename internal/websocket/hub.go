package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dennisdiepolder/availability/internal/metrics"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and pushes dashboard snapshots to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Snapshots to push
	broadcast chan *types.Dashboard

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Latest snapshot, sent to clients as soon as they connect
	last *types.Dashboard

	// Mutex to protect clients map and last
	mu sync.RWMutex

	// Logger
	logger zerolog.Logger
}

// NewHub creates a new Hub
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *types.Dashboard, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	m := metrics.Get()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.last != nil {
				h.sendLocked(client, h.last, nil)
			}
			total := len(h.clients)
			h.mu.Unlock()

			m.RecordWebSocketConnect()
			h.logger.Info().
				Str("client_id", client.id).
				Int("total_clients", total).
				Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				m.RecordWebSocketDisconnect()
				h.logger.Info().
					Str("client_id", client.id).
					Int("total_clients", len(h.clients)).
					Msg("client disconnected")
			}
			h.mu.Unlock()

		case dashboard := <-h.broadcast:
			h.broadcastFiltered(dashboard)
			m.RecordBroadcast()
		}
	}
}

// Broadcast queues a snapshot for every connected client
func (h *Hub) Broadcast(d *types.Dashboard) {
	h.broadcast <- d
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastFiltered sends the snapshot to each client after applying its zone filter
func (h *Hub) broadcastFiltered(d *types.Dashboard) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = d

	// most clients see everything, so marshal the full snapshot once
	var full []byte
	for client := range h.clients {
		if client.seesAll() {
			if full == nil {
				data, err := json.Marshal(d)
				if err != nil {
					h.logger.Error().Err(err).Msg("failed to marshal snapshot")
					return
				}
				full = data
			}
			h.sendLocked(client, d, full)
			continue
		}
		h.sendLocked(client, d, nil)
	}
}

// sendLocked delivers one snapshot. data is the pre-marshalled payload, or
// nil to filter and marshal for this client. Caller holds h.mu.
func (h *Hub) sendLocked(client *Client, d *types.Dashboard, data []byte) {
	if data == nil {
		var err error
		data, err = json.Marshal(client.FilterDashboard(d))
		if err != nil {
			h.logger.Error().Err(err).Msg("failed to marshal filtered snapshot")
			return
		}
	}

	select {
	case client.send <- data:
	default:
		// Client's send buffer is full, close and remove it
		close(client.send)
		delete(h.clients, client)
		metrics.Get().RecordWebSocketDisconnect()
		h.logger.Warn().
			Str("client_id", client.id).
			Msg("client send buffer full, closing connection")
	}
}
