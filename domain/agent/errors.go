package agent

import "errors"

// Domain errors for the decision core. Both are recoverable by design:
// the core always returns them to the caller and never aborts, logs, or
// substitutes a default on its own.
var (
	// ErrNoMatchingHistory indicates the table strategy found no entry
	// for the exact accumulated percept sequence.
	ErrNoMatchingHistory = errors.New("no matching history")

	// ErrNoApplicableRule indicates the reflex strategy's rule-matching
	// step declined to produce an action for the interpreted state.
	ErrNoApplicableRule = errors.New("no applicable rule")
)
