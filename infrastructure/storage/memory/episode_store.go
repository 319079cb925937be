// Package memory provides in-memory implementations of storage
// interfaces, primarily as test doubles for the persistent backends.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

// EpisodeStore is an in-memory implementation of ledger.Store.
type EpisodeStore struct {
	entries   map[string][]ledger.Entry // episodeID -> entries
	sequences map[string]uint64         // episodeID -> last sequence
	mu        sync.RWMutex
}

// NewEpisodeStore creates a new in-memory episode store.
func NewEpisodeStore() *EpisodeStore {
	return &EpisodeStore{
		entries:   make(map[string][]ledger.Entry),
		sequences: make(map[string]uint64),
	}
}

// Append persists one or more entries atomically.
func (s *EpisodeStore) Append(ctx context.Context, entries ...ledger.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate before mutating anything so the append stays atomic.
	for _, e := range entries {
		if e.Type == "" || e.EpisodeID == "" {
			return ledger.ErrInvalidEntry
		}
	}

	for _, e := range entries {
		seq := s.sequences[e.EpisodeID] + 1
		s.sequences[e.EpisodeID] = seq

		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.Sequence = seq

		s.entries[e.EpisodeID] = append(s.entries[e.EpisodeID], e)
	}

	return nil
}

// List retrieves all entries for an episode in sequence order.
func (s *EpisodeStore) List(ctx context.Context, episodeID string) ([]ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.entries[episodeID]
	if !ok {
		return nil, ledger.ErrEpisodeNotFound
	}

	entries := make([]ledger.Entry, len(stored))
	copy(entries, stored)
	return entries, nil
}

// Episodes returns the IDs of all persisted episodes, sorted.
func (s *EpisodeStore) Episodes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
