package application

import (
	"github.com/felixgeelhaar/percept-go/domain/ledger"
	"github.com/felixgeelhaar/percept-go/infrastructure/resilience"
	"github.com/felixgeelhaar/percept-go/infrastructure/telemetry"
)

// Option configures the driver.
type Option[P comparable, A any] func(*Driver[P, A])

// WithSink sets the action sink. Without a sink the driver still
// resolves and records every step; it just has nowhere to act.
func WithSink[P comparable, A any](sink Sink[A]) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.sink = sink
	}
}

// WithStore sets the ledger store the episode trail is flushed to.
func WithStore[P comparable, A any](store ledger.Store) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.store = store
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics[P comparable, A any](mp *telemetry.MetricsProvider) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.metrics = mp
	}
}

// WithMaxSteps bounds the episode's horizon. Zero means unbounded.
func WithMaxSteps[P comparable, A any](n int) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.maxSteps = n
	}
}

// WithDefaultAction configures the action substituted when the agent
// returns one of the two decision error kinds. This is the caller's
// explicit degradation choice; without it the episode fails on the
// first unresolved percept.
func WithDefaultAction[P comparable, A any](action A) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.defaultAction = &action
	}
}

// WithStrategy labels the episode's resolution strategy in logs,
// ledger entries, and metrics.
func WithStrategy[P comparable, A any](name string) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.strategy = name
	}
}

// WithResilience wraps sink applications in a resilient executor with
// the given configuration.
func WithResilience[P comparable, A any](config resilience.Config) Option[P, A] {
	return func(d *Driver[P, A]) {
		d.sinkExec = resilience.New[struct{}](config)
	}
}
