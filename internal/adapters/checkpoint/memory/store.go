// Package memory is the in-memory checkpoint store. It is NOT persistent
// and is only suitable for development / local mode.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nmoreno/gymstats-agent/internal/domain"
)

type Store struct {
	mu      sync.RWMutex
	threads map[domain.ThreadID][]byte
}

// NewStore creates a new in-memory checkpoint store.
func NewStore() *Store {
	return &Store{
		threads: make(map[domain.ThreadID][]byte),
	}
}

// Save snapshots the state. The state is serialized so later mutations by
// the caller cannot leak into the stored checkpoint.
func (s *Store) Save(_ context.Context, id domain.ThreadID, state *domain.State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads[id] = b
	return nil
}

// Load returns a copy of the last saved state for the thread, or
// domain.ErrNotFound.
func (s *Store) Load(_ context.Context, id domain.ThreadID) (*domain.State, error) {
	s.mu.RLock()
	b, ok := s.threads[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}

	var state domain.State
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &state, nil
}
