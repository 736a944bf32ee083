package websocket

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and broadcasts messages to clients
type Hub struct {
	// Rooms indexed by name
	rooms map[string]map[*Client]struct{}

	Register   chan *Client
	Unregister chan *Client
	// Broadcast messages to clients in a specific room
	Broadcast chan Message

	mu     sync.RWMutex
	Logger zerolog.Logger

	// closed when Run returns
	stopped chan struct{}
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
		Logger:     logger,
		stopped:    make(chan struct{}),
	}
}

// Run starts the hub's main event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

// Join hands the client to the running hub. It reports false once the hub
// has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.stopped:
		return false
	}
}

// Leave removes the client, or does nothing once the hub has stopped.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.stopped:
	}
}

// Publish queues a message for its room. It reports false once the hub has
// stopped.
func (h *Hub) Publish(message Message) bool {
	select {
	case h.Broadcast <- message:
		return true
	case <-h.stopped:
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	room, exists := h.rooms[client.Room]
	if !exists {
		room = make(map[*Client]struct{})
		h.rooms[client.Room] = room
		h.Logger.Info().Str("room", client.Room).Msg("Created new room")
	}
	room[client] = struct{}{}
	count := len(room)
	h.mu.Unlock()

	h.Logger.Info().Str("room", client.Room).Str("clientId", client.ID).Int("totalClients", count).Msg("Client joined room")
	h.broadcastMessage(newMessage(MessageTypeJoin, client.Room, client.ID, Presence{Clients: count}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	room, exists := h.rooms[client.Room]
	if !exists {
		h.mu.Unlock()
		return
	}
	if _, ok := room[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(room, client)
	close(client.Send)
	count := len(room)
	if count == 0 {
		delete(h.rooms, client.Room)
		h.Logger.Info().Str("room", client.Room).Msg("Removed empty room")
	}
	h.mu.Unlock()

	if count > 0 {
		h.broadcastMessage(newMessage(MessageTypeLeave, client.Room, client.ID, Presence{Clients: count}))
	}
}

// broadcastMessage drops the message for clients whose buffer is full.
func (h *Hub) broadcastMessage(message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[message.Room]
	if !exists {
		h.Logger.Warn().Str("room", message.Room).Str("type", string(message.Type)).Msg("Room not found for broadcast")
		return
	}
	for client := range room {
		select {
		case client.Send <- message:
		default:
			h.Logger.Warn().Str("clientId", client.ID).Msg("Client send buffer full, message dropped")
		}
	}
}

// RoomStats returns the number of clients per active room.
func (h *Hub) RoomStats() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[string]int, len(h.rooms))
	for name, room := range h.rooms {
		stats[name] = len(room)
	}
	return stats
}
