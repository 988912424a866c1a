// Package observe holds the OpenTelemetry instruments recorded by the
// boardroom. Without an SDK provider installed the global provider is a
// no-op, so recording is always safe.
package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/latestcomment/boardroom-chat"

type Metrics struct {
	// Submissions counts controller submissions by outcome.
	Submissions metric.Int64Counter

	// RelayRequests counts relay endpoint calls by engine and status.
	RelayRequests metric.Int64Counter

	// BackendDuration tracks language-model latency in seconds.
	BackendDuration metric.Float64Histogram

	// MessagesRevealed counts transcript entries shown by the sequencer.
	MessagesRevealed metric.Int64Counter

	// ActiveSessions tracks open websocket sessions.
	ActiveSessions metric.Int64UpDownCounter
}

var latencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120}

func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Submissions, err = m.Int64Counter("boardroom.submissions",
		metric.WithDescription("Pitch submissions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.RelayRequests, err = m.Int64Counter("boardroom.relay.requests",
		metric.WithDescription("Relay requests by engine and status."),
	); err != nil {
		return nil, err
	}
	if met.BackendDuration, err = m.Float64Histogram("boardroom.backend.duration",
		metric.WithDescription("Latency of transcript generation."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.MessagesRevealed, err = m.Int64Counter("boardroom.messages.revealed",
		metric.WithDescription("Transcript entries revealed during playback."),
	); err != nil {
		return nil, err
	}
	if met.ActiveSessions, err = m.Int64UpDownCounter("boardroom.active_sessions",
		metric.WithDescription("Open stream sessions."),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Default builds Metrics on the global meter provider.
func Default() *Metrics {
	m, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		panic("observe: failed to create metrics: " + err.Error())
	}
	return m
}

func (m *Metrics) RecordSubmission(ctx context.Context, outcome string) {
	m.Submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordRelay(ctx context.Context, engine, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("status", status),
	)
	m.RelayRequests.Add(ctx, 1, attrs)
	if seconds > 0 {
		m.BackendDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String("engine", engine)))
	}
}

func (m *Metrics) RecordRevealed(ctx context.Context, styleClass string) {
	m.MessagesRevealed.Add(ctx, 1, metric.WithAttributes(attribute.String("style_class", styleClass)))
}
