// Package agent provides the core domain model for percept-driven
// decision making: the percept log, the decision table, and the two
// resolution strategies (table-driven and simple reflex).
package agent

// Agent is the decision contract both strategies satisfy. Advance is
// invoked once per received percept, in receipt order, by a single
// external driver. Implementations differ only in whether percept
// history is retained and in how the action is computed; the invocation
// protocol is identical, which is what lets a driver be written once
// against either strategy.
//
// Advance never panics. On a miss it returns one of the sentinel errors
// in this package for the caller to handle; it never fabricates a
// default action on its own.
//
// Concurrent calls on the same instance are not supported: the table
// strategy's append-then-lookup must be observed as one atomic step.
type Agent[P comparable, A any] interface {
	Advance(percept P) (A, error)
}

// Unrecognized is a ready-made interpreted state for percepts the
// interpretation step cannot confidently classify. It carries the
// original percept so nothing is silently dropped; two Unrecognized
// values are equal iff their carried percepts are equal.
type Unrecognized[P comparable] struct {
	Percept P
}
