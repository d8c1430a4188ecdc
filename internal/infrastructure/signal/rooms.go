package signal

import (
	"sync"

	"teleconsult/internal/core/domain"
)

// RoomRegistry groups connections by consultation for fan-out of chat
// messages, negotiation payloads and call-ended broadcasts. Membership is
// ephemeral per-connection state; rooms appear on first join and vanish with
// their last member.
type RoomRegistry struct {
	mu       sync.RWMutex
	rooms    map[domain.AppointmentID]map[*Client]struct{}
	byClient map[*Client]map[domain.AppointmentID]struct{}
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[domain.AppointmentID]map[*Client]struct{}),
		byClient: make(map[*Client]map[domain.AppointmentID]struct{}),
	}
}

// Join subscribes a connection to a consultation room. Participant
// authorization happens in the relay before this is called.
func (r *RoomRegistry) Join(id domain.AppointmentID, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[id] == nil {
		r.rooms[id] = make(map[*Client]struct{})
	}
	r.rooms[id][c] = struct{}{}

	if r.byClient[c] == nil {
		r.byClient[c] = make(map[domain.AppointmentID]struct{})
	}
	r.byClient[c][id] = struct{}{}
}

// RemoveClient drops the connection from every room it joined. Called on
// disconnect; there is no explicit leave operation.
func (r *RoomRegistry) RemoveClient(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.byClient[c] {
		delete(r.rooms[id], c)
		if len(r.rooms[id]) == 0 {
			delete(r.rooms, id)
		}
	}
	delete(r.byClient, c)
}

// Contains reports whether the connection is subscribed to the room.
func (r *RoomRegistry) Contains(id domain.AppointmentID, c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[id][c]
	return ok
}

// Broadcast delivers a frame to every current member except the excluded
// connections. Delivery is best effort; members that cannot accept the
// frame are skipped. Returns the number of members the frame was queued to.
func (r *RoomRegistry) Broadcast(id domain.AppointmentID, f Frame, exclude ...*Client) int {
	r.mu.RLock()
	members := make([]*Client, 0, len(r.rooms[id]))
	for c := range r.rooms[id] {
		members = append(members, c)
	}
	r.mu.RUnlock()

	sent := 0
	for _, c := range members {
		if excluded(c, exclude) {
			continue
		}
		if err := c.TrySend(f); err == nil {
			sent++
		}
	}
	return sent
}

func excluded(c *Client, exclude []*Client) bool {
	for _, e := range exclude {
		if c == e {
			return true
		}
	}
	return false
}
