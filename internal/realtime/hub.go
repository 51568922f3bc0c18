package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hostelhub/hostel-service/internal/events"
	"github.com/hostelhub/hostel-service/internal/metrics"
)

const defaultSendBuffer = 32

// Frame is the wire shape of every server to client message
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Observer receives delivery outcomes and connection counts
type Observer interface {
	ObserveDelivery(event, outcome string)
	SetConnections(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveDelivery(string, string) {}
func (nopObserver) SetConnections(int)             {}

// Client is one authenticated socket. Frames queue on send and are written
// by the connection's write loop.
type Client struct {
	id     uint64
	UserID uint
	send   chan []byte
}

// Hub tracks room membership for the sockets connected to this instance.
// A user may hold many sockets (tabs); every socket of a user shares the
// user's room.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	count    int
	nextID   atomic.Uint64
	buffer   int
	logger   *slog.Logger
	observer Observer
}

func NewHub(logger *slog.Logger, observer Observer) *Hub {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Hub{
		rooms:    make(map[string]map[*Client]struct{}),
		buffer:   defaultSendBuffer,
		logger:   logger,
		observer: observer,
	}
}

// NewClient allocates a client for userID. It is not reachable until Join.
func (h *Hub) NewClient(userID uint) *Client {
	return &Client{
		id:     h.nextID.Add(1),
		UserID: userID,
		send:   make(chan []byte, h.buffer),
	}
}

// Join adds the client to its user's room
func (h *Hub) Join(client *Client) {
	room := events.RoomForUser(client.UserID)

	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}
	h.count++
	count := h.count
	h.mu.Unlock()

	h.observer.SetConnections(count)
	h.logger.Debug("Socket joined room", "room", room, "client_id", client.id, "connections", count)
}

// Leave removes the client and closes its send channel. Calling Leave twice
// is harmless.
func (h *Hub) Leave(client *Client) {
	room := events.RoomForUser(client.UserID)

	h.mu.Lock()
	members, ok := h.rooms[room]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, joined := members[client]; !joined {
		h.mu.Unlock()
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	h.count--
	count := h.count
	close(client.send)
	h.mu.Unlock()

	h.observer.SetConnections(count)
	h.logger.Debug("Socket left room", "room", room, "client_id", client.id, "connections", count)
}

// Deliver fans an event out to every socket in its room and returns how many
// sockets accepted the frame. A socket whose buffer is full misses the frame.
func (h *Hub) Deliver(event *events.RealtimeEvent) int {
	frame, err := json.Marshal(Frame{Event: string(event.Type), Data: event.Data})
	if err != nil {
		h.logger.Error("Failed to encode realtime frame", "event_id", event.ID, "error", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[event.Room]
	if len(members) == 0 {
		h.observer.ObserveDelivery(string(event.Type), metrics.OutcomeNoSubscriber)
		return 0
	}

	delivered := 0
	for client := range members {
		select {
		case client.send <- frame:
			delivered++
			h.observer.ObserveDelivery(string(event.Type), metrics.OutcomeDelivered)
		default:
			h.observer.ObserveDelivery(string(event.Type), metrics.OutcomeDropped)
			h.logger.Warn("Dropped realtime frame, socket buffer full",
				"event_id", event.ID,
				"event_type", event.Type,
				"room", event.Room,
				"client_id", client.id)
		}
	}
	return delivered
}

// ConnectedCount returns the number of joined sockets
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// RoomSize returns the number of sockets in room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
