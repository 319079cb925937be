// Package statemachine provides the statekit statechart for the
// episode lifecycle. The decision core stays a pure function of its
// inputs; the statechart only constrains how the driver moves an
// episode between phases.
package statemachine

import (
	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/percept-go/domain/ledger"
)

// Lifecycle phases for a decision episode.
const (
	PhasePending   statekit.StateID = "pending"
	PhaseRunning   statekit.StateID = "running"
	PhaseCompleted statekit.StateID = "completed"
	PhaseFailed    statekit.StateID = "failed"
)

// Lifecycle events.
const (
	EventStart    statekit.EventType = "START"
	EventComplete statekit.EventType = "COMPLETE"
	EventFail     statekit.EventType = "FAIL"
)

// PhasePayload carries the target phase and reason with an event.
type PhasePayload struct {
	To     statekit.StateID
	Reason string
}

// Context carries episode state through the lifecycle machine.
type Context struct {
	EpisodeID string
	Phase     statekit.StateID
	Ledger    *ledger.Ledger
}

// NewContext creates a new machine context for an episode.
func NewContext(episodeID string, ledg *ledger.Ledger) *Context {
	return &Context{
		EpisodeID: episodeID,
		Phase:     PhasePending,
		Ledger:    ledg,
	}
}

// NewEpisodeMachine creates the episode lifecycle statechart.
func NewEpisodeMachine() (*statekit.MachineConfig[*Context], error) {
	return statekit.NewMachine[*Context]("episode").
		WithInitial(PhasePending).
		WithContext(&Context{}).
		WithAction("recordPhase", recordPhase).
		WithGuard("hasEpisode", guardHasEpisode).
		State(PhasePending).
			On(EventStart).Target(PhaseRunning).Guard("hasEpisode").Do("recordPhase").
			Done().
		State(PhaseRunning).
			On(EventComplete).Target(PhaseCompleted).Do("recordPhase").
			On(EventFail).Target(PhaseFailed).Do("recordPhase").
			Done().
		State(PhaseCompleted).
			Final().
			Done().
		State(PhaseFailed).
			Final().
			Done().
		Build()
}

// recordPhase records the phase transition in the ledger and updates
// the context's current phase. In statekit, actions receive a pointer
// to the context; since our context is *Context, actions receive
// **Context.
func recordPhase(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	c := *ctx

	payload, ok := event.Payload.(PhasePayload)
	if !ok {
		payload = PhasePayload{To: phaseFromEventType(event.Type)}
	}

	if c.Ledger != nil {
		c.Ledger.RecordPhaseChange(string(c.Phase), string(payload.To), payload.Reason)
	}
	c.Phase = payload.To
}

// guardHasEpisode rejects starting an episode without an ID. Guards
// receive the context by value, so a *Context context arrives directly.
func guardHasEpisode(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.EpisodeID != ""
}

// phaseFromEventType derives the target phase from an event type.
func phaseFromEventType(eventType statekit.EventType) statekit.StateID {
	switch eventType {
	case EventStart:
		return PhaseRunning
	case EventComplete:
		return PhaseCompleted
	case EventFail:
		return PhaseFailed
	default:
		return statekit.StateID(eventType)
	}
}
