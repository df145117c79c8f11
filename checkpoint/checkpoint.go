// Package checkpoint provides graph.Checkpointer implementations: an
// in-memory saver for tests and single-process runs, and a Redis-backed
// saver for runs that must survive the process.
package checkpoint

import (
	"context"
	"sync"

	"github.com/hupe1980/magma/graph"
)

// InMemorySaver keeps the latest checkpoint per run in a mutex-guarded map.
type InMemorySaver struct {
	mu          sync.RWMutex
	checkpoints map[string]graph.Checkpoint
}

// NewInMemorySaver creates an empty in-memory saver.
func NewInMemorySaver() *InMemorySaver {
	return &InMemorySaver{checkpoints: make(map[string]graph.Checkpoint)}
}

// Save implements graph.Checkpointer.
func (s *InMemorySaver) Save(_ context.Context, cp graph.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[cp.RunID] = cp

	return nil
}

// Load implements graph.Checkpointer.
func (s *InMemorySaver) Load(_ context.Context, runID string) (graph.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[runID]

	return cp, ok, nil
}

// Len returns the number of stored runs.
func (s *InMemorySaver) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.checkpoints)
}
