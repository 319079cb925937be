// Package application provides the environment driver around a
// decision core: it feeds percepts into an agent one at a time, in
// receipt order, and acts on the fallible results. Everything the core
// is forbidden to do — I/O, logging, retries, substituting defaults —
// happens here, on the caller's explicit terms.
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/percept-go/domain/agent"
	"github.com/felixgeelhaar/percept-go/domain/ledger"
	"github.com/felixgeelhaar/percept-go/infrastructure/logging"
	"github.com/felixgeelhaar/percept-go/infrastructure/resilience"
	"github.com/felixgeelhaar/percept-go/infrastructure/statemachine"
	"github.com/felixgeelhaar/percept-go/infrastructure/telemetry"
)

// EpisodeStatus is the terminal status of a driven episode.
type EpisodeStatus string

const (
	EpisodeCompleted EpisodeStatus = "completed"
	EpisodeFailed    EpisodeStatus = "failed"
)

// Episode summarizes one completed driver run.
type Episode struct {
	ID       string
	Steps    int
	Status   EpisodeStatus
	Duration time.Duration
	Err      error
}

// Driver feeds percepts from a Source into an Agent and applies the
// resolved actions to a Sink, strictly sequentially: one Advance per
// percept, never skipped, reordered, or replayed.
type Driver[P comparable, A any] struct {
	agent         agent.Agent[P, A]
	source        Source[P]
	sink          Sink[A]
	store         ledger.Store
	metrics       *telemetry.MetricsProvider
	sinkExec      *resilience.Executor[struct{}]
	defaultAction *A
	maxSteps      int
	strategy      string
}

// NewDriver creates a driver over the given agent and percept source.
func NewDriver[P comparable, A any](
	decisionAgent agent.Agent[P, A],
	source Source[P],
	opts ...Option[P, A],
) (*Driver[P, A], error) {
	if decisionAgent == nil {
		return nil, errors.New("agent is required")
	}
	if source == nil {
		return nil, errors.New("source is required")
	}

	d := &Driver[P, A]{
		agent:    decisionAgent,
		source:   source,
		strategy: "unspecified",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Run drives one episode: percepts are consumed until the source is
// exhausted, the step bound is reached, the context is cancelled, or a
// failure that no configured fallback covers. The episode summary is
// returned alongside the terminal error, if any.
func (d *Driver[P, A]) Run(ctx context.Context) (*Episode, error) {
	episodeID := uuid.New().String()
	ledg := ledger.New(episodeID)

	machine, err := statemachine.NewEpisodeMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to create episode machine: %w", err)
	}
	interp := statemachine.NewInterpreter(machine, statemachine.NewContext(episodeID, ledg))
	interp.Start()

	ledg.RecordEpisodeStarted(d.strategy)
	logging.Info().
		Add(logging.EpisodeID(episodeID)).
		Add(logging.Strategy(d.strategy)).
		Msg("episode started")

	if err := interp.Begin("driver started"); err != nil {
		return nil, fmt.Errorf("failed to start episode: %w", err)
	}
	if d.metrics != nil {
		d.metrics.EpisodeStarted(ctx)
	}

	start := time.Now()
	episode := &Episode{ID: episodeID}
	steps := 0
	var runErr error

	for {
		if d.maxSteps > 0 && steps >= d.maxSteps {
			break
		}

		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		percept, err := d.source.Next(ctx)
		if errors.Is(err, ErrSourceExhausted) {
			break
		}
		if err != nil {
			runErr = fmt.Errorf("source error: %w", err)
			break
		}

		steps++
		ledg.RecordPercept(steps, percept)

		advStart := time.Now()
		action, advErr := d.agent.Advance(percept)
		outcome := outcomeForError(advErr)
		if d.metrics != nil {
			d.metrics.RecordAdvance(ctx, d.strategy, outcome, time.Since(advStart))
		}

		logging.Debug().
			Add(logging.EpisodeID(episodeID)).
			Add(logging.Step(steps)).
			Add(logging.Percept(percept)).
			Add(logging.Outcome(outcome)).
			Msg("advance")

		if advErr != nil {
			ledg.RecordResolutionFailure(steps, percept, advErr)

			if d.defaultAction != nil && isDecisionError(advErr) {
				action = *d.defaultAction
				ledg.RecordFallback(steps, action)
				if d.metrics != nil {
					d.metrics.RecordFallback(ctx, d.strategy)
				}
				logging.Warn().
					Add(logging.EpisodeID(episodeID)).
					Add(logging.Step(steps)).
					Add(logging.Action(action)).
					Add(logging.ErrorField(advErr)).
					Msg("default action applied")
			} else {
				runErr = advErr
				break
			}
		} else {
			ledg.RecordAction(steps, percept, action)
		}

		if d.sink != nil {
			if err := d.applyAction(ctx, action); err != nil {
				runErr = fmt.Errorf("sink error: %w", err)
				break
			}
		}
	}

	episode.Steps = steps
	episode.Duration = time.Since(start)

	if runErr != nil {
		episode.Status = EpisodeFailed
		episode.Err = runErr
		ledg.RecordEpisodeFailed(steps, runErr.Error())
		if err := interp.Fail(runErr.Error()); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("lifecycle fail event rejected")
		}

		logging.Error().
			Add(logging.EpisodeID(episodeID)).
			Add(logging.Steps(steps)).
			Add(logging.ErrorField(runErr)).
			Msg("episode failed")
	} else {
		episode.Status = EpisodeCompleted
		ledg.RecordEpisodeCompleted(steps)
		if err := interp.Complete("source exhausted"); err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("lifecycle complete event rejected")
		}

		logging.Info().
			Add(logging.EpisodeID(episodeID)).
			Add(logging.Steps(steps)).
			Add(logging.Duration(episode.Duration)).
			Msg("episode completed")
	}

	if d.metrics != nil {
		d.metrics.EpisodeEnded(ctx, string(episode.Status), episode.Duration)
	}

	d.flush(ctx, episodeID, ledg)

	return episode, runErr
}

// applyAction delivers the action to the sink, through the resilient
// executor when one is configured.
func (d *Driver[P, A]) applyAction(ctx context.Context, action A) error {
	if d.sinkExec == nil {
		return d.sink.Apply(ctx, action)
	}
	_, err := d.sinkExec.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.sink.Apply(ctx, action)
	})
	return err
}

// flush persists the episode's ledger. The audit trail is written even
// when the episode was cancelled, so the flush context is detached from
// the run's cancellation.
func (d *Driver[P, A]) flush(ctx context.Context, episodeID string, ledg *ledger.Ledger) {
	if d.store == nil {
		return
	}
	if err := d.store.Append(context.WithoutCancel(ctx), ledg.Entries()...); err != nil {
		logging.Warn().
			Add(logging.EpisodeID(episodeID)).
			Add(logging.ErrorField(err)).
			Msg("failed to persist episode ledger")
	}
}

// outcomeForError classifies an Advance result for metrics and logs.
func outcomeForError(err error) string {
	switch {
	case err == nil:
		return "resolved"
	case errors.Is(err, agent.ErrNoMatchingHistory):
		return "no_matching_history"
	case errors.Is(err, agent.ErrNoApplicableRule):
		return "no_applicable_rule"
	default:
		return "error"
	}
}

// isDecisionError reports whether the error is one of the core's two
// recoverable decision error kinds. Only those may be degraded to the
// caller-configured default action.
func isDecisionError(err error) bool {
	return errors.Is(err, agent.ErrNoMatchingHistory) || errors.Is(err, agent.ErrNoApplicableRule)
}
