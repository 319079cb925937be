package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

func newTestStore(t *testing.T) *EpisodeStore {
	t.Helper()

	store, err := NewEpisodeStore(DefaultConfig(), WithInMemory(), WithGCInterval(0))
	if err != nil {
		t.Fatalf("NewEpisodeStore() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestEpisodeStore_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []ledger.Entry{
		{Type: ledger.EntryEpisodeStarted, EpisodeID: "ep-1"},
		{Type: ledger.EntryPerceptReceived, EpisodeID: "ep-1"},
		{Type: ledger.EntryEpisodeCompleted, EpisodeID: "ep-1"},
	}
	if err := store.Append(ctx, entries...); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.List(ctx, "ep-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(got))
	}
	for i, e := range got {
		if e.Sequence != uint64(i+1) {
			t.Errorf("entry %d sequence = %d, want %d", i, e.Sequence, i+1)
		}
		if e.ID == "" {
			t.Errorf("entry %d has empty ID", i)
		}
	}
}

func TestEpisodeStore_SequenceContinuesAcrossAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, ledger.Entry{Type: ledger.EntryEpisodeStarted, EpisodeID: "ep-1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Append(ctx, ledger.Entry{Type: ledger.EntryEpisodeCompleted, EpisodeID: "ep-1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.List(ctx, "ep-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got[1].Sequence != 2 {
		t.Errorf("second entry sequence = %d, want 2", got[1].Sequence)
	}
}

func TestEpisodeStore_ListUnknownEpisode(t *testing.T) {
	store := newTestStore(t)

	_, err := store.List(context.Background(), "missing")
	if !errors.Is(err, ledger.ErrEpisodeNotFound) {
		t.Errorf("List() error = %v, want ErrEpisodeNotFound", err)
	}
}

func TestEpisodeStore_RejectsInvalidEntry(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(context.Background(), ledger.Entry{EpisodeID: "ep-1"})
	if !errors.Is(err, ledger.ErrInvalidEntry) {
		t.Errorf("Append() error = %v, want ErrInvalidEntry", err)
	}
}

func TestEpisodeStore_Episodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx,
		ledger.Entry{Type: ledger.EntryEpisodeStarted, EpisodeID: "ep-a"},
		ledger.Entry{Type: ledger.EntryEpisodeStarted, EpisodeID: "ep-b"},
	); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	ids, err := store.Episodes(ctx)
	if err != nil {
		t.Fatalf("Episodes() error = %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Episodes() returned %d IDs, want 2", len(ids))
	}
}

func TestEpisodeStore_DeleteEpisode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, ledger.Entry{Type: ledger.EntryEpisodeStarted, EpisodeID: "ep-1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.DeleteEpisode(ctx, "ep-1"); err != nil {
		t.Fatalf("DeleteEpisode() error = %v", err)
	}

	if _, err := store.List(ctx, "ep-1"); !errors.Is(err, ledger.ErrEpisodeNotFound) {
		t.Errorf("List() after delete error = %v, want ErrEpisodeNotFound", err)
	}
}
