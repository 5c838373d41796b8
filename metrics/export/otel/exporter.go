package otel

import (
	"context"
	"errors"
	"fmt"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/MrEthical07/goSocial/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when there is no client to read metrics from.
	ErrNilSource = errors.New("nil metrics source")
)

// snapshotSource is the part of *goSocial.Client the exporter reads.
type snapshotSource interface {
	MetricsSnapshot() goSocial.MetricsSnapshot
	AuditDropped() uint64
}

type sessionCounter struct {
	id         goSocial.MetricID
	instrument metric.Int64ObservableCounter
}

// latencyGauges publishes one request latency histogram as cumulative
// per-bound gauges plus a sample count.
type latencyGauges struct {
	id     goSocial.MetricID
	le     [8]metric.Int64ObservableGauge
	sample metric.Int64ObservableGauge
}

// OTelExporter publishes a client's session and API counters, its request
// latency histogram, and dropped audit events as OpenTelemetry observable
// instruments. Values are read from the client at each collection; Close
// stops that.
type OTelExporter struct {
	source       snapshotSource
	registration metric.Registration
	counters     []sessionCounter
	latencies    []latencyGauges
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter registers the client's instruments on meter.
func NewOTelExporter(meter metric.Meter, client *goSocial.Client) (*OTelExporter, error) {
	if client == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, client)
}

// NewOTelExporterFromSource is NewOTelExporter for anything that can produce a
// metrics snapshot.
func NewOTelExporterFromSource(meter metric.Meter, source snapshotSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	for _, def := range internaldefs.CounterDefs {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("otel: counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, sessionCounter{id: def.ID, instrument: ins})
		observables = append(observables, ins)
	}

	for _, def := range internaldefs.HistogramDefs {
		g, ins, err := newLatencyGauges(meter, def)
		if err != nil {
			return nil, err
		}
		e.latencies = append(e.latencies, g)
		observables = append(observables, ins...)
	}

	dropped, err := meter.Int64ObservableCounter(
		"gosocial_audit_dropped_total",
		metric.WithDescription("Audit events dropped because the client's audit buffer was full."),
	)
	if err != nil {
		return nil, fmt.Errorf("otel: audit dropped counter: %w", err)
	}
	e.auditDropped = dropped
	observables = append(observables, dropped)

	reg, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("otel: register callback: %w", err)
	}
	e.registration = reg
	return e, nil
}

func newLatencyGauges(meter metric.Meter, def internaldefs.HistogramDef) (latencyGauges, []metric.Observable, error) {
	g := latencyGauges{id: def.ID}
	ins := make([]metric.Observable, 0, len(g.le)+1)
	for i, suffix := range internaldefs.HistogramBoundSuffix {
		name := def.Name + "_bucket_le_" + suffix
		gauge, err := meter.Int64ObservableGauge(name,
			metric.WithDescription("API requests that completed within the bound, cumulative."))
		if err != nil {
			return g, nil, fmt.Errorf("otel: latency gauge %s: %w", name, err)
		}
		g.le[i] = gauge
		ins = append(ins, gauge)
	}
	name := def.Name + "_count"
	sample, err := meter.Int64ObservableGauge(name, metric.WithDescription("API requests timed."))
	if err != nil {
		return g, nil, fmt.Errorf("otel: latency gauge %s: %w", name, err)
	}
	g.sample = sample
	return g, append(ins, sample), nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		o.ObserveInt64(c.instrument, int64(snap.Counters[c.id]))
	}
	for _, g := range e.latencies {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[g.id]))
		for i := range g.le {
			o.ObserveInt64(g.le[i], int64(cumulative[i]))
		}
		o.ObserveInt64(g.sample, int64(cumulative[len(cumulative)-1]))
	}
	o.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback. It is safe on a nil exporter.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
