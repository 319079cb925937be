// Package filesystem provides file-backed storage for episode ledgers
// and change notification for agent spec files.
package filesystem

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

const (
	dirPerm  = 0750
	filePerm = 0640
	fileExt  = ".jsonl"
)

// EpisodeStore persists ledger entries as JSON lines, one file per
// episode under the configured directory.
type EpisodeStore struct {
	dir       string
	sequences map[string]uint64
	mu        sync.Mutex
}

// NewEpisodeStore creates a filesystem-backed episode store rooted at dir.
func NewEpisodeStore(dir string) (*EpisodeStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &EpisodeStore{
		dir:       dir,
		sequences: make(map[string]uint64),
	}, nil
}

// Append persists entries to their episode files.
func (s *EpisodeStore) Append(ctx context.Context, entries ...ledger.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	for _, e := range entries {
		if e.Type == "" || e.EpisodeID == "" {
			return ledger.ErrInvalidEntry
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		seq, err := s.nextSequence(e.EpisodeID)
		if err != nil {
			return err
		}
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		e.Sequence = seq

		if err := s.writeEntry(e); err != nil {
			return err
		}
	}

	return nil
}

// nextSequence returns the next sequence number for an episode. The
// counter is seeded lazily from the existing file so a store reopened
// over prior data continues where it left off. Caller holds s.mu.
func (s *EpisodeStore) nextSequence(episodeID string) (uint64, error) {
	if _, ok := s.sequences[episodeID]; !ok {
		count, err := s.countEntries(episodeID)
		if err != nil {
			return 0, err
		}
		s.sequences[episodeID] = count
	}
	s.sequences[episodeID]++
	return s.sequences[episodeID], nil
}

func (s *EpisodeStore) countEntries(episodeID string) (uint64, error) {
	f, err := os.Open(s.episodePath(episodeID))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("opening episode file: %w", err)
	}
	defer f.Close()

	var count uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanning episode file: %w", err)
	}
	return count, nil
}

func (s *EpisodeStore) writeEntry(e ledger.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	f, err := os.OpenFile(s.episodePath(e.EpisodeID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePerm)
	if err != nil {
		return fmt.Errorf("opening episode file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

// List retrieves all entries for an episode in stored order.
func (s *EpisodeStore) List(ctx context.Context, episodeID string) ([]ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.episodePath(episodeID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ledger.ErrEpisodeNotFound
		}
		return nil, fmt.Errorf("opening episode file: %w", err)
	}
	defer f.Close()

	var entries []ledger.Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e ledger.Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decoding entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning episode file: %w", err)
	}
	return entries, nil
}

// Episodes returns the IDs of all persisted episodes, sorted.
func (s *EpisodeStore) Episodes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading storage directory: %w", err)
	}

	var ids []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(f.Name(), fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *EpisodeStore) episodePath(episodeID string) string {
	return filepath.Join(s.dir, episodeID+fileExt)
}
