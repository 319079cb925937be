package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger provides an append-only record of everything that happens
// during one decision episode.
type Ledger struct {
	episodeID string
	entries   []Entry
	mu        sync.RWMutex
}

// New creates a new ledger for the given episode.
func New(episodeID string) *Ledger {
	return &Ledger{
		episodeID: episodeID,
		entries:   make([]Entry, 0),
	}
}

// Append adds an entry to the ledger.
func (l *Ledger) Append(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.EpisodeID = l.episodeID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	l.entries = append(l.entries, entry)
}

// Entries returns a copy of all entries.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// EntriesByType returns entries filtered by type.
func (l *Ledger) EntriesByType(entryType EntryType) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var filtered []Entry
	for _, e := range l.entries {
		if e.Type == entryType {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// LastEntry returns the most recent entry, or nil if empty.
func (l *Ledger) LastEntry() *Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return nil
	}
	entry := l.entries[len(l.entries)-1]
	return &entry
}

// Count returns the number of entries.
func (l *Ledger) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// EpisodeID returns the associated episode ID.
func (l *Ledger) EpisodeID() string {
	return l.episodeID
}

// RecordEpisodeStarted records the start of an episode.
func (l *Ledger) RecordEpisodeStarted(strategy string) {
	l.Append(NewEntry(EntryEpisodeStarted, l.episodeID, 0, StartDetails{
		Strategy: strategy,
	}))
}

// RecordPercept records the receipt of a percept at the given step.
func (l *Ledger) RecordPercept(step int, percept any) {
	l.Append(NewEntry(EntryPerceptReceived, l.episodeID, step, PerceptDetails{
		Percept: fmt.Sprint(percept),
	}))
}

// RecordAction records a successfully resolved action.
func (l *Ledger) RecordAction(step int, percept, action any) {
	l.Append(NewEntry(EntryActionResolved, l.episodeID, step, ActionDetails{
		Percept: fmt.Sprint(percept),
		Action:  fmt.Sprint(action),
	}))
}

// RecordResolutionFailure records a resolver failure for a percept.
func (l *Ledger) RecordResolutionFailure(step int, percept any, err error) {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	l.Append(NewEntry(EntryResolutionFailed, l.episodeID, step, FailureDetails{
		Percept: fmt.Sprint(percept),
		Reason:  reason,
	}))
}

// RecordFallback records that the caller-configured default action was
// substituted after a resolution failure.
func (l *Ledger) RecordFallback(step int, action any) {
	l.Append(NewEntry(EntryFallbackApplied, l.episodeID, step, ActionDetails{
		Action: fmt.Sprint(action),
	}))
}

// RecordPhaseChange records an episode lifecycle transition.
func (l *Ledger) RecordPhaseChange(from, to, reason string) {
	l.Append(NewEntry(EntryPhaseChanged, l.episodeID, 0, PhaseDetails{
		From:   from,
		To:     to,
		Reason: reason,
	}))
}

// RecordEpisodeCompleted records the successful end of an episode.
func (l *Ledger) RecordEpisodeCompleted(steps int) {
	l.Append(NewEntry(EntryEpisodeCompleted, l.episodeID, steps, OutcomeDetails{
		Steps: steps,
	}))
}

// RecordEpisodeFailed records the failure of an episode.
func (l *Ledger) RecordEpisodeFailed(steps int, reason string) {
	l.Append(NewEntry(EntryEpisodeFailed, l.episodeID, steps, OutcomeDetails{
		Steps:  steps,
		Reason: reason,
	}))
}
