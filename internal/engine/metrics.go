package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded for every pass.
type Metrics struct {
	passTotal    metric.Int64Counter
	passDuration metric.Float64Histogram
	nodeTotal    metric.Int64Counter
	nodeFailures metric.Int64Counter
}

// NewMetrics creates the engine instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	passTotal, err := meter.Int64Counter("blueprint.pass.total",
		metric.WithDescription("Total number of passes by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blueprint.pass.total counter: %w", err)
	}

	passDuration, err := meter.Float64Histogram("blueprint.pass.duration",
		metric.WithDescription("Duration of passes in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blueprint.pass.duration histogram: %w", err)
	}

	nodeTotal, err := meter.Int64Counter("blueprint.node.executions",
		metric.WithDescription("Node executions by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blueprint.node.executions counter: %w", err)
	}

	nodeFailures, err := meter.Int64Counter("blueprint.node.failures",
		metric.WithDescription("Failed node executions by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating blueprint.node.failures counter: %w", err)
	}

	return &Metrics{
		passTotal:    passTotal,
		passDuration: passDuration,
		nodeTotal:    nodeTotal,
		nodeFailures: nodeFailures,
	}, nil
}

func (m *Metrics) recordPass(ctx context.Context, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.passTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.passDuration.Record(ctx, d.Seconds())
}

func (m *Metrics) recordNode(ctx context.Context, typeID string) {
	if m == nil {
		return
	}
	m.nodeTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typeID)))
}

func (m *Metrics) recordFailure(ctx context.Context, typeID string) {
	if m == nil {
		return
	}
	m.nodeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typeID)))
}
