// Package session persists the browse state of each visitor between requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-questions/internal/browse"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Store persists browse state keyed by session id. A request loads the
// state, applies one interaction and saves it back; the cycle is not atomic,
// so concurrent requests on the same session keep only the last save. Each
// session is assumed to have a single actor.
type Store interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (browse.State, error)
	Save(ctx context.Context, id string, state browse.State) error
}

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	states map[string]browse.State
	mu     sync.RWMutex
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]browse.State),
	}
}

func (s *MemoryStore) Create(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	s.states[id] = browse.State{}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (browse.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[id]
	if !ok {
		return browse.State{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return st, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, state browse.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.states[id] = state
	return nil
}

func generateID() string {
	return uuid.NewString()
}
