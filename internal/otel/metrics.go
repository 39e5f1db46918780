package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "stagehand"

// Metrics holds all OTEL metric instruments for stagehand.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Driver call counter (partitioned by op + outcome via attributes)
	DriverCalls metric.Int64Counter

	// Pane lifecycle counters
	PanesCreated  metric.Int64Counter
	PanesParked   metric.Int64Counter
	PanesRecalled metric.Int64Counter
	PaneDeaths    metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.DriverCalls, err = meter.Int64Counter("mux.driver.calls",
		metric.WithDescription("Total multiplexer driver invocations partitioned by op and outcome"))
	if err != nil {
		return nil, err
	}

	m.PanesCreated, err = meter.Int64Counter("panes.created",
		metric.WithDescription("Number of panes created next to the anchor"))
	if err != nil {
		return nil, err
	}

	m.PanesParked, err = meter.Int64Counter("panes.parked",
		metric.WithDescription("Number of panes broken out into the holding session"))
	if err != nil {
		return nil, err
	}

	m.PanesRecalled, err = meter.Int64Counter("panes.recalled",
		metric.WithDescription("Number of panes joined back into the visible window"))
	if err != nil {
		return nil, err
	}

	m.PaneDeaths, err = meter.Int64Counter("panes.deaths",
		metric.WithDescription("Number of pane process exits observed by the watcher"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDriverCall records one driver invocation. Implements
// mux.CallRecorder.
func (m *Metrics) RecordDriverCall(ctx context.Context, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.DriverCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mux.op", op),
		attribute.String("mux.outcome", outcome),
	))
}

// RecordPaneCreated records one pane creation.
func (m *Metrics) RecordPaneCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.PanesCreated.Add(ctx, 1)
}

// RecordPaneParked records one pane moved into the holding session.
func (m *Metrics) RecordPaneParked(ctx context.Context) {
	if m == nil {
		return
	}
	m.PanesParked.Add(ctx, 1)
}

// RecordPaneRecalled records one pane moved back into the visible window.
func (m *Metrics) RecordPaneRecalled(ctx context.Context) {
	if m == nil {
		return
	}
	m.PanesRecalled.Add(ctx, 1)
}

// RecordPaneDeath records one observed pane process exit.
func (m *Metrics) RecordPaneDeath(ctx context.Context) {
	if m == nil {
		return
	}
	m.PaneDeaths.Add(ctx, 1)
}
