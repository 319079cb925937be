package agent

// Log retains, in arrival order, every percept an agent instance has
// observed. It only ever appends; it never truncates or reorders, so
// the sequence after n calls has length exactly n.
//
// Growth is unbounded and linear in the number of invocations. That is
// a known limitation of the table-driven strategy, not something this
// type works around: bounding the horizon is the caller's choice.
type Log[P comparable] struct {
	percepts []P
}

// NewLog creates an empty percept log.
func NewLog[P comparable]() *Log[P] {
	return &Log[P]{percepts: make([]P, 0)}
}

// Append adds a percept to the end of the log.
func (l *Log[P]) Append(p P) {
	l.percepts = append(l.percepts, p)
}

// Sequence returns a copy of the current ordered contents. The copy is
// the lookup key for the table strategy; callers cannot mutate the log
// through it.
func (l *Log[P]) Sequence() []P {
	seq := make([]P, len(l.percepts))
	copy(seq, l.percepts)
	return seq
}

// Len returns the number of percepts observed so far.
func (l *Log[P]) Len() int {
	return len(l.percepts)
}
