package service

import (
	"fmt"
	"sync"

	"casino/models"
)

// SessionRegistry is the single source of truth for the "one game per
// participant" invariant. It maps a reserved player to the key of the
// game holding them. All access goes through the reserve/release
// operations; the map itself is never exposed.
type SessionRegistry struct {
	mu       sync.Mutex
	reserved map[int64]string
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		reserved: make(map[int64]string),
	}
}

// ReserveAll reserves every id for gameKey as one atomic step. If any id
// is already reserved, none are reserved and the call fails with
// models.ErrConflict.
func (r *SessionRegistry) ReserveAll(gameKey string, ids ...int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if key, ok := r.reserved[id]; ok {
			return fmt.Errorf("player %d is already in game %s: %w", id, key, models.ErrConflict)
		}
	}
	for _, id := range ids {
		r.reserved[id] = gameKey
	}
	return nil
}

// Release frees the reservations for the given ids. Releasing an
// unreserved id is a no-op so cleanup paths can race safely.
func (r *SessionRegistry) Release(ids ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		delete(r.reserved, id)
	}
}

// IsReserved reports whether the id currently holds a reservation
func (r *SessionRegistry) IsReserved(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.reserved[id]
	return ok
}
