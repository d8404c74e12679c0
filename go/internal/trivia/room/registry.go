package room

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// maxCodeAttempts bounds the collision retry loop when allocating a code.
const maxCodeAttempts = 32

// Registry maps room codes to live rooms and connections to the room they
// belong to. Its lock is independent of any room lock.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	members map[string]string // connection id -> room id

	capacity int
	clock    clockwork.Clock
	newCode  func() (string, error)
}

// NewRegistry creates an empty registry whose rooms hold at most capacity players.
func NewRegistry(capacity int, clock clockwork.Clock) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		rooms:    make(map[string]*Room),
		members:  make(map[string]string),
		capacity: capacity,
		clock:    clock,
		newCode:  GenerateCode,
	}
}

// Create allocates a fresh waiting room under an unused code.
func (reg *Registry) Create() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := reg.newCode()
		if err != nil {
			return nil, err
		}
		if _, taken := reg.rooms[code]; taken {
			log.Debug().Str("room_id", code).Msg("room code collision, retrying")
			continue
		}

		r := New(code, reg.capacity, reg.clock.Now())
		reg.rooms[code] = r
		return r, nil
	}
	return nil, fmt.Errorf("failed to allocate room code after %d attempts", maxCodeAttempts)
}

// Get returns the room with the given code.
func (reg *Registry) Get(id string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[NormalizeCode(id)]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Delete removes a room and every connection binding that points at it.
func (reg *Registry) Delete(id string) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	id = NormalizeCode(id)
	if _, ok := reg.rooms[id]; !ok {
		return false
	}
	delete(reg.rooms, id)
	for connID, roomID := range reg.members {
		if roomID == id {
			delete(reg.members, connID)
		}
	}
	return true
}

// Len returns the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// IDs returns the codes of all live rooms in sorted order.
func (reg *Registry) IDs() []string {
	reg.mu.RLock()
	ids := make([]string, 0, len(reg.rooms))
	for id := range reg.rooms {
		ids = append(ids, id)
	}
	reg.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Bind records that a connection belongs to a room and returns the room it
// was previously bound to, if any.
func (reg *Registry) Bind(connID, roomID string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	prev, ok := reg.members[connID]
	reg.members[connID] = roomID
	return prev, ok && prev != roomID
}

// Unbind removes a connection's binding if it still points at roomID.
func (reg *Registry) Unbind(connID, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.members[connID] == roomID {
		delete(reg.members, connID)
	}
}

// RoomOf returns the room a connection is bound to.
func (reg *Registry) RoomOf(connID string) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	id, ok := reg.members[connID]
	return id, ok
}
