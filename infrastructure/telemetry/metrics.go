// Package telemetry provides OpenTelemetry metrics for the percept-go
// decision runtime. The decision core itself performs no I/O; these
// instruments are recorded by the driver around each advance.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	advances  metric.Int64Counter
	fallbacks metric.Int64Counter

	// Histograms
	advanceDuration metric.Float64Histogram
	episodeDuration metric.Float64Histogram

	// Gauges (UpDownCounter for OpenTelemetry)
	activeEpisodes metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/percept-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/percept-go",
		MeterVersion: "0.1.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.advances, err = mp.meter.Int64Counter(
		"percept.advances",
		metric.WithDescription("Number of advance invocations"),
		metric.WithUnit("{advance}"),
	)
	if err != nil {
		return err
	}

	mp.fallbacks, err = mp.meter.Int64Counter(
		"percept.fallbacks",
		metric.WithDescription("Number of caller-configured fallback actions applied"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return err
	}

	mp.advanceDuration, err = mp.meter.Float64Histogram(
		"percept.advance.duration",
		metric.WithDescription("Duration of advance invocations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.episodeDuration, err = mp.meter.Float64Histogram(
		"percept.episode.duration",
		metric.WithDescription("Duration of decision episodes"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.activeEpisodes, err = mp.meter.Int64UpDownCounter(
		"percept.episodes.active",
		metric.WithDescription("Number of active decision episodes"),
		metric.WithUnit("{episode}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordAdvance records a single advance invocation and its outcome.
func (mp *MetricsProvider) RecordAdvance(ctx context.Context, strategy, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("strategy", strategy),
		attribute.String("outcome", outcome),
	}

	mp.advances.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.advanceDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordFallback records that the configured default action was applied.
func (mp *MetricsProvider) RecordFallback(ctx context.Context, strategy string) {
	mp.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("strategy", strategy),
	))
}

// EpisodeStarted records the start of an episode.
func (mp *MetricsProvider) EpisodeStarted(ctx context.Context) {
	mp.activeEpisodes.Add(ctx, 1)
}

// EpisodeEnded records the end of an episode with its terminal status.
func (mp *MetricsProvider) EpisodeEnded(ctx context.Context, status string, duration time.Duration) {
	mp.activeEpisodes.Add(ctx, -1)
	mp.episodeDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("status", status),
	))
}
