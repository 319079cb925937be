package ledger

import (
	"context"
	"errors"
)

// Store errors.
var (
	// ErrInvalidEntry indicates an entry is missing required fields.
	ErrInvalidEntry = errors.New("invalid ledger entry")

	// ErrEpisodeNotFound indicates no entries exist for an episode.
	ErrEpisodeNotFound = errors.New("episode not found")
)

// Store persists ledger entries. Implementations assign each entry a
// monotonic per-episode sequence number on append.
type Store interface {
	// Append persists one or more entries atomically.
	Append(ctx context.Context, entries ...Entry) error

	// List retrieves all entries for an episode in sequence order.
	List(ctx context.Context, episodeID string) ([]Entry, error)

	// Episodes returns the IDs of all persisted episodes.
	Episodes(ctx context.Context) ([]string, error)
}
