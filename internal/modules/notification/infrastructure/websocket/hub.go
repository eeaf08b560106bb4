package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type unicast struct {
	userID  uuid.UUID
	message []byte
}

// Hub owns the set of connected inbox subscribers and routes per-user
// payloads to them. One user may hold several connections (several tabs);
// every one of them receives the payload.
type Hub struct {
	clients map[uuid.UUID]map[*Client]struct{}

	unicast    chan unicast
	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once
	logger   zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		unicast:    make(chan unicast),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			conns, ok := h.clients[client.userID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[client.userID] = conns
			}
			conns[client] = struct{}{}
			h.logger.Debug().Str("user_id", client.userID.String()).Msg("subscriber registered")

		case client := <-h.unregister:
			h.drop(client)

		case msg := <-h.unicast:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.message:
				default:
					// Slow consumer: drop the connection rather than block
					// delivery to everyone else.
					h.drop(client)
				}
			}

		case <-h.stop:
			for _, conns := range h.clients {
				for client := range conns {
					close(client.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			h.logger.Debug().Msg("hub stopped")
			return
		}
	}
}

func (h *Hub) drop(client *Client) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug().Str("user_id", client.userID.String()).Msg("subscriber unregistered")
}

// SendToUser delivers a payload to every open connection of one user.
// Delivery is at-least-once from the caller's perspective and silently
// drops when nobody is connected.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	select {
	case h.unicast <- unicast{userID: userID, message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
