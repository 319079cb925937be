package application

import (
	"context"
	"errors"
	"sync"
)

// ErrSourceExhausted is returned by a Source when no more percepts
// will arrive. The driver treats it as the normal end of an episode.
var ErrSourceExhausted = errors.New("percept source exhausted")

// Source supplies percepts to the driver, one per step. Adapters over
// real sensors convert their own latency and failure modes into errors
// here, before anything crosses into the decision core.
type Source[P any] interface {
	Next(ctx context.Context) (P, error)
}

// Sink receives each resolved action. Adapters over real actuators
// live behind this interface.
type Sink[A any] interface {
	Apply(ctx context.Context, action A) error
}

// SliceSource serves a fixed sequence of percepts in order.
type SliceSource[P any] struct {
	percepts []P
	next     int
}

// NewSliceSource creates a source over the given percepts.
func NewSliceSource[P any](percepts ...P) *SliceSource[P] {
	return &SliceSource[P]{percepts: percepts}
}

// Next returns the next percept, or ErrSourceExhausted.
func (s *SliceSource[P]) Next(ctx context.Context) (P, error) {
	var zero P
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.next >= len(s.percepts) {
		return zero, ErrSourceExhausted
	}
	p := s.percepts[s.next]
	s.next++
	return p, nil
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[A any] func(ctx context.Context, action A) error

// Apply calls the function.
func (f SinkFunc[A]) Apply(ctx context.Context, action A) error {
	return f(ctx, action)
}

// CollectSink accumulates applied actions. Useful in tests and for the
// CLI's buffered output.
type CollectSink[A any] struct {
	mu      sync.Mutex
	actions []A
}

// Apply records the action.
func (s *CollectSink[A]) Apply(ctx context.Context, action A) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

// Actions returns a copy of all applied actions.
func (s *CollectSink[A]) Actions() []A {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]A, len(s.actions))
	copy(actions, s.actions)
	return actions
}
