package statemachine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Interpreter wraps the statekit interpreter with episode-specific
// functionality.
type Interpreter struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// NewInterpreter creates a new interpreter for the episode lifecycle.
func NewInterpreter(machine *statekit.MachineConfig[*Context], ctx *Context) *Interpreter {
	interp := statekit.NewInterpreter(machine)
	// Update the context reference in the machine
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})
	return &Interpreter{
		interp: interp,
		ctx:    ctx,
	}
}

// Start initializes the interpreter and enters the pending phase.
func (i *Interpreter) Start() {
	i.interp.Start()
	i.ctx.Phase = statekit.StateID(i.interp.State().Value)
}

// Stop stops the interpreter.
func (i *Interpreter) Stop() {
	i.interp.Stop()
}

// Phase returns the current lifecycle phase.
func (i *Interpreter) Phase() statekit.StateID {
	return statekit.StateID(i.interp.State().Value)
}

// IsTerminal returns true once the episode has completed or failed.
func (i *Interpreter) IsTerminal() bool {
	phase := i.Phase()
	return phase == PhaseCompleted || phase == PhaseFailed
}

// Begin moves the episode from pending to running.
func (i *Interpreter) Begin(reason string) error {
	if i.ctx.EpisodeID == "" {
		return fmt.Errorf("episode ID is required")
	}
	return i.send(PhasePending, EventStart, PhasePayload{To: PhaseRunning, Reason: reason})
}

// Complete moves the episode from running to completed.
func (i *Interpreter) Complete(reason string) error {
	return i.send(PhaseRunning, EventComplete, PhasePayload{To: PhaseCompleted, Reason: reason})
}

// Fail moves the episode from running to failed.
func (i *Interpreter) Fail(reason string) error {
	return i.send(PhaseRunning, EventFail, PhasePayload{To: PhaseFailed, Reason: reason})
}

// send validates the current phase before dispatching, since statekit
// uses panics for events that have no transition in the current state.
func (i *Interpreter) send(from statekit.StateID, eventType statekit.EventType, payload PhasePayload) error {
	if current := i.Phase(); current != from {
		return fmt.Errorf("event %s not allowed in phase %s", eventType, current)
	}

	i.interp.Send(statekit.Event{
		Type:    eventType,
		Payload: payload,
	})

	i.ctx.Phase = statekit.StateID(i.interp.State().Value)
	return nil
}
