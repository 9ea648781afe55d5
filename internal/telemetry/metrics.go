package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "ctchen222/tic-tac-toe-history"

// Metrics records game activity.
type Metrics struct {
	intentsApplied  metric.Int64Counter
	intentsRejected metric.Int64Counter
	activeSessions  metric.Int64UpDownCounter
}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	applied, err := meter.Int64Counter("ttt.intents.applied",
		metric.WithDescription("Intents applied to a game"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create applied counter: %w", err)
	}
	rejected, err := meter.Int64Counter("ttt.intents.rejected",
		metric.WithDescription("Intents rejected without changing a game"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rejected counter: %w", err)
	}
	active, err := meter.Int64UpDownCounter("ttt.sessions.active",
		metric.WithDescription("Sessions currently running on this instance"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions counter: %w", err)
	}

	return &Metrics{
		intentsApplied:  applied,
		intentsRejected: rejected,
		activeSessions:  active,
	}, nil
}

// IntentApplied counts an accepted intent of the given kind.
func (m *Metrics) IntentApplied(ctx context.Context, kind string) {
	m.intentsApplied.Add(ctx, 1, metric.WithAttributes(attribute.String("intent.type", kind)))
}

// IntentRejected counts a rejected intent with the reason it was refused.
func (m *Metrics) IntentRejected(ctx context.Context, kind, reason string) {
	m.intentsRejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent.type", kind),
		attribute.String("intent.reason", reason),
	))
}

// SessionStarted and SessionStopped track live sessions.
func (m *Metrics) SessionStarted(ctx context.Context) { m.activeSessions.Add(ctx, 1) }

func (m *Metrics) SessionStopped(ctx context.Context) { m.activeSessions.Add(ctx, -1) }
