// Package ledger provides the append-only audit trail for decision
// episodes: every percept received, every action resolved, and every
// resolution failure is recorded in arrival order.
package ledger

import (
	"encoding/json"
	"time"
)

// EntryType classifies the type of ledger entry.
type EntryType string

const (
	EntryEpisodeStarted   EntryType = "episode_started"
	EntryPerceptReceived  EntryType = "percept_received"
	EntryActionResolved   EntryType = "action_resolved"
	EntryResolutionFailed EntryType = "resolution_failed"
	EntryFallbackApplied  EntryType = "fallback_applied"
	EntryPhaseChanged     EntryType = "phase_changed"
	EntryEpisodeCompleted EntryType = "episode_completed"
	EntryEpisodeFailed    EntryType = "episode_failed"
)

// Entry represents a single record in the ledger. Sequence is assigned
// by the store on persistence, not by the ledger.
type Entry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      EntryType       `json:"type"`
	EpisodeID string          `json:"episode_id"`
	Step      int             `json:"step,omitempty"`
	Sequence  uint64          `json:"sequence,omitempty"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// StartDetails contains details for episode start entries.
type StartDetails struct {
	Strategy string `json:"strategy,omitempty"`
}

// PerceptDetails contains details for percept entries.
type PerceptDetails struct {
	Percept string `json:"percept"`
}

// ActionDetails contains details for resolved action entries.
type ActionDetails struct {
	Percept string `json:"percept"`
	Action  string `json:"action"`
}

// FailureDetails contains details for resolution failure entries.
type FailureDetails struct {
	Percept string `json:"percept"`
	Reason  string `json:"reason"`
}

// PhaseDetails contains details for episode phase changes.
type PhaseDetails struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

// OutcomeDetails contains details for terminal episode entries.
type OutcomeDetails struct {
	Steps  int    `json:"steps"`
	Reason string `json:"reason,omitempty"`
}

// NewEntry creates an entry of the given type with marshaled details.
// Marshal failures are recorded in place of the details rather than
// dropped, so the trail never loses an entry.
func NewEntry(entryType EntryType, episodeID string, step int, details any) Entry {
	var raw json.RawMessage
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			data, _ = json.Marshal(map[string]string{"marshal_error": err.Error()})
		}
		raw = data
	}

	return Entry{
		Timestamp: time.Now(),
		Type:      entryType,
		EpisodeID: episodeID,
		Step:      step,
		Details:   raw,
	}
}
