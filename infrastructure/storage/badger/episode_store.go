package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

// EpisodeStore is a BadgerDB-backed implementation of ledger.Store.
type EpisodeStore struct {
	db        *badger.DB
	keyPrefix string
	gcStop    chan struct{}
	gcWg      sync.WaitGroup
}

// NewEpisodeStore creates a new BadgerDB episode store with the given
// configuration.
func NewEpisodeStore(cfg Config, opts ...Option) (*EpisodeStore, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	s := &EpisodeStore{
		db:        db,
		keyPrefix: cfg.KeyPrefix,
		gcStop:    make(chan struct{}),
	}

	if cfg.GCInterval > 0 {
		s.startGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}

	return s, nil
}

// NewEpisodeStoreFromDB creates an episode store from an existing
// BadgerDB database.
func NewEpisodeStoreFromDB(db *badger.DB, keyPrefix string) *EpisodeStore {
	return &EpisodeStore{
		db:        db,
		keyPrefix: keyPrefix,
		gcStop:    make(chan struct{}),
	}
}

// startGC starts the value log garbage collection goroutine.
func (s *EpisodeStore) startGC(interval time.Duration, discardRatio float64) {
	s.gcWg.Add(1)
	go func() {
		defer s.gcWg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.gcStop:
				return
			case <-ticker.C:
				// RunValueLogGC returns ErrNoRewrite when there is
				// nothing to collect.
				for s.db.RunValueLogGC(discardRatio) == nil {
				}
			}
		}
	}()
}

// Key format: prefix:entries:episodeID:sequence (8 bytes, big-endian)
func (s *EpisodeStore) entryKey(episodeID string, seq uint64) []byte {
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	return append([]byte(s.keyPrefix+"entries:"+episodeID+":"), seqBytes...)
}

// Key format: prefix:seq:episodeID for storing the sequence counter
func (s *EpisodeStore) seqKey(episodeID string) []byte {
	return []byte(s.keyPrefix + "seq:" + episodeID)
}

// Append persists one or more entries atomically.
func (s *EpisodeStore) Append(ctx context.Context, entries ...ledger.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	byEpisode := make(map[string][]ledger.Entry)
	for _, e := range entries {
		if e.Type == "" || e.EpisodeID == "" {
			return ledger.ErrInvalidEntry
		}
		byEpisode[e.EpisodeID] = append(byEpisode[e.EpisodeID], e)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for episodeID, episodeEntries := range byEpisode {
			var seq uint64
			seqKey := s.seqKey(episodeID)

			item, err := txn.Get(seqKey)
			if err == nil {
				err = item.Value(func(val []byte) error {
					if len(val) == 8 {
						seq = binary.BigEndian.Uint64(val)
					}
					return nil
				})
				if err != nil {
					return err
				}
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			for i := range episodeEntries {
				e := &episodeEntries[i]

				if e.ID == "" {
					e.ID = uuid.New().String()
				}

				seq++
				e.Sequence = seq

				data, err := json.Marshal(e)
				if err != nil {
					return err
				}

				if err := txn.Set(s.entryKey(episodeID, seq), data); err != nil {
					return err
				}
			}

			seqBytes := make([]byte, 8)
			binary.BigEndian.PutUint64(seqBytes, seq)
			if err := txn.Set(seqKey, seqBytes); err != nil {
				return err
			}
		}

		return nil
	})
}

// List retrieves all entries for an episode in sequence order.
func (s *EpisodeStore) List(ctx context.Context, episodeID string) ([]ledger.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(s.keyPrefix + "entries:" + episodeID + ":")
	var entries []ledger.Entry

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			var e ledger.Entry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				continue // Skip malformed entries
			}

			entries = append(entries, e)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ledger.ErrEpisodeNotFound
	}

	return entries, nil
}

// Episodes returns the IDs of all episodes with entries in the store.
func (s *EpisodeStore) Episodes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(s.keyPrefix + "seq:")
	prefixLen := len(prefix)
	var episodes []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			episodes = append(episodes, string(key[prefixLen:]))
		}

		return nil
	})

	return episodes, err
}

// DeleteEpisode removes all entries for a specific episode.
func (s *EpisodeStore) DeleteEpisode(ctx context.Context, episodeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := []byte(s.keyPrefix + "entries:" + episodeID + ":")
	if err := s.db.DropPrefix(prefix); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.seqKey(episodeID))
	})
}

// Close stops background GC and closes the database.
func (s *EpisodeStore) Close() error {
	close(s.gcStop)
	s.gcWg.Wait()
	return s.db.Close()
}

// DB returns the underlying BadgerDB database.
func (s *EpisodeStore) DB() *badger.DB {
	return s.db
}

var _ ledger.Store = (*EpisodeStore)(nil)
