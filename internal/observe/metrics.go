// Package observe provides application-wide observability primitives for
// Verbatim: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Verbatim metrics.
const meterName = "github.com/eeeeman22/verbatim"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// AnalysisDuration tracks phonological pattern analysis latency.
	AnalysisDuration metric.Float64Histogram

	// TranscriptApplyDuration tracks how long applying a recognition
	// result to the live session takes.
	TranscriptApplyDuration metric.Float64Histogram

	// --- Counters ---

	// WordsTranscribed counts words ingested from the recognition feed.
	// Use with attribute: attribute.String("category", ...)
	WordsTranscribed metric.Int64Counter

	// WordsFlagged counts words flagged for clinician review.
	WordsFlagged metric.Int64Counter

	// SuggestionsGenerated counts analyzer error hypotheses produced.
	SuggestionsGenerated metric.Int64Counter

	// ErrorsConfirmed counts clinician confirmations. Use with attributes:
	//   attribute.String("pattern", ...), attribute.Bool("custom", ...)
	ErrorsConfirmed metric.Int64Counter

	// WordsDismissed counts clinician dismissals.
	WordsDismissed metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts recognition provider errors. Use with
	// attribute: attribute.String("provider", ...)
	ProviderErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live review sessions.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for per-transcript processing latencies.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.AnalysisDuration, err = m.Float64Histogram("verbatim.analysis.duration",
		metric.WithDescription("Latency of phonological pattern analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptApplyDuration, err = m.Float64Histogram("verbatim.transcript.apply.duration",
		metric.WithDescription("Latency of applying a transcript to the live session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.WordsTranscribed, err = m.Int64Counter("verbatim.words.transcribed",
		metric.WithDescription("Total words ingested from the recognition feed by confidence category."),
	); err != nil {
		return nil, err
	}
	if met.WordsFlagged, err = m.Int64Counter("verbatim.words.flagged",
		metric.WithDescription("Total words flagged for clinician review."),
	); err != nil {
		return nil, err
	}
	if met.SuggestionsGenerated, err = m.Int64Counter("verbatim.suggestions.generated",
		metric.WithDescription("Total analyzer error hypotheses produced."),
	); err != nil {
		return nil, err
	}
	if met.ErrorsConfirmed, err = m.Int64Counter("verbatim.errors.confirmed",
		metric.WithDescription("Total clinician-confirmed errors by pattern."),
	); err != nil {
		return nil, err
	}
	if met.WordsDismissed, err = m.Int64Counter("verbatim.words.dismissed",
		metric.WithDescription("Total clinician dismissals."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("verbatim.provider.errors",
		metric.WithDescription("Total recognition provider errors by provider."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("verbatim.active_sessions",
		metric.WithDescription("Number of live review sessions."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("verbatim.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordConfirmation records a clinician confirmation with the standard
// attribute set.
func (m *Metrics) RecordConfirmation(ctx context.Context, pattern string, custom bool) {
	m.ErrorsConfirmed.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("pattern", pattern),
			attribute.Bool("custom", custom),
		),
	)
}

// RecordWordTranscribed records a word ingested from the recognition feed
// with its confidence category.
func (m *Metrics) RecordWordTranscribed(ctx context.Context, category string) {
	m.WordsTranscribed.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordProviderError records a recognition provider error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}
