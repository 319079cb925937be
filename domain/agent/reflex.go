package agent

import (
	"errors"
	"fmt"
)

// InterpretFunc maps a single percept to an interpreted state. It must
// be total: every possible percept value maps to a defined state,
// typically including an Unrecognized variant for inputs it cannot
// confidently classify. A partial interpretation is indistinguishable
// from silent corruption at the boundary, so this requirement is not
// negotiable.
type InterpretFunc[P comparable, S any] func(percept P) S

// RuleFunc maps an interpreted state to an action. Unlike InterpretFunc
// it may legitimately fail: for states judged indeterminate it returns
// an error wrapping ErrNoApplicableRule rather than selecting an
// arbitrary default.
type RuleFunc[S, A any] func(state S) (A, error)

// ReflexAgent resolves an action from the single most recent percept by
// composing an interpretation step and a rule-matching step. No history
// is consulted or retained: repeated calls with the same percept yield
// the same result, a property the strategy trades for the table
// strategy's unbounded memory growth.
type ReflexAgent[P comparable, S, A any] struct {
	interpret InterpretFunc[P, S]
	rule      RuleFunc[S, A]
	fallback  *A
}

// ReflexOption configures a reflex agent.
type ReflexOption[P comparable, S, A any] func(*ReflexAgent[P, S, A])

// WithReflexFallback makes the agent return the given action whenever
// the rule-matching step fails with ErrNoApplicableRule. Degrading to a
// safe action must always be an explicit caller choice like this one,
// never an implicit default.
func WithReflexFallback[P comparable, S, A any](action A) ReflexOption[P, S, A] {
	return func(a *ReflexAgent[P, S, A]) {
		a.fallback = &action
	}
}

// NewReflexAgent creates a simple reflex agent from the two supplied
// functions.
func NewReflexAgent[P comparable, S, A any](
	interpret InterpretFunc[P, S],
	rule RuleFunc[S, A],
	opts ...ReflexOption[P, S, A],
) (*ReflexAgent[P, S, A], error) {
	if interpret == nil {
		return nil, fmt.Errorf("interpret function is required")
	}
	if rule == nil {
		return nil, fmt.Errorf("rule function is required")
	}

	a := &ReflexAgent[P, S, A]{
		interpret: interpret,
		rule:      rule,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Advance interprets the percept and dispatches the resulting state
// through the rule-matching step. A rule miss returns
// ErrNoApplicableRule unless a fallback action was configured.
func (a *ReflexAgent[P, S, A]) Advance(percept P) (A, error) {
	action, err := a.rule(a.interpret(percept))
	if err != nil {
		if a.fallback != nil && errors.Is(err, ErrNoApplicableRule) {
			return *a.fallback, nil
		}
		var zero A
		return zero, err
	}
	return action, nil
}
