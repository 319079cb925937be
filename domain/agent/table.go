package agent

import "fmt"

// Table maps exact ordered percept sequences to actions. Internally it
// is a trie keyed on individual percepts, since Go maps cannot key on
// slices; lookup cost is linear in the sequence length and matching is
// structural (equal length, pairwise-equal elements, in order).
//
// A table is populated during bootstrap and must not be mutated once an
// agent starts advancing against it. Put is the administrative
// operation; the decision path only reads.
//
// Pre-populating a table for every future percept grows it as the sum
// over t of |alphabet|^t. Callers are expected to bound the horizon
// explicitly rather than expect the table to generalize.
type Table[P comparable, A any] struct {
	root    *tableNode[P, A]
	size    int
	horizon int
}

type tableNode[P comparable, A any] struct {
	children map[P]*tableNode[P, A]
	action   *A
}

// NewTable creates an empty decision table.
func NewTable[P comparable, A any]() *Table[P, A] {
	return &Table[P, A]{root: &tableNode[P, A]{}}
}

// Put associates an action with an exact percept sequence. Inserting
// the same sequence twice overwrites the previous action.
func (t *Table[P, A]) Put(sequence []P, action A) {
	n := t.root
	for _, p := range sequence {
		if n.children == nil {
			n.children = make(map[P]*tableNode[P, A])
		}
		child, ok := n.children[p]
		if !ok {
			child = &tableNode[P, A]{}
			n.children[p] = child
		}
		n = child
	}
	if n.action == nil {
		t.size++
	}
	a := action
	n.action = &a
	if len(sequence) > t.horizon {
		t.horizon = len(sequence)
	}
}

// Lookup returns the action for the exact sequence, if present.
func (t *Table[P, A]) Lookup(sequence []P) (A, bool) {
	n := t.root
	for _, p := range sequence {
		child, ok := n.children[p]
		if !ok {
			var zero A
			return zero, false
		}
		n = child
	}
	if n.action == nil {
		var zero A
		return zero, false
	}
	return *n.action, true
}

// Len returns the number of sequences in the table.
func (t *Table[P, A]) Len() int {
	return t.size
}

// Horizon returns the length of the longest sequence in the table. An
// agent whose log has grown past the horizon can never match again.
func (t *Table[P, A]) Horizon() int {
	return t.horizon
}

// TableAgent resolves actions by exact lookup of its complete percept
// history in a pre-built decision table. Each Advance appends the
// incoming percept to the log and looks up the resulting sequence; the
// strategy has no way to generalize to unseen histories, deliberately.
type TableAgent[P comparable, A any] struct {
	log   *Log[P]
	table *Table[P, A]
}

// NewTableAgent creates a table-driven agent over a fully populated
// table. The table must not be mutated after this call.
func NewTableAgent[P comparable, A any](table *Table[P, A]) (*TableAgent[P, A], error) {
	if table == nil {
		return nil, fmt.Errorf("table is required")
	}
	return &TableAgent[P, A]{
		log:   NewLog[P](),
		table: table,
	}, nil
}

// Advance appends the percept to the history and resolves the action
// for the exact accumulated sequence. A miss returns
// ErrNoMatchingHistory; the table is never extended at runtime.
func (a *TableAgent[P, A]) Advance(percept P) (A, error) {
	a.log.Append(percept)
	if action, ok := a.table.Lookup(a.log.percepts); ok {
		return action, nil
	}
	var zero A
	return zero, fmt.Errorf("%w: sequence of length %d", ErrNoMatchingHistory, a.log.Len())
}

// History returns a copy of the percept sequence observed so far.
func (a *TableAgent[P, A]) History() []P {
	return a.log.Sequence()
}
