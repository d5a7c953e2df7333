package otel

import (
	"context"
	"errors"
	"fmt"

	goLink "github.com/MrEthical07/goLink"
	"github.com/MrEthical07/goLink/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// metricsSource is the slice of the engine the exporter reads: the flow
// counter snapshot plus the audit backpressure drop count.
type metricsSource interface {
	MetricsSnapshot() goLink.MetricsSnapshot
	AuditDropped() uint64
}

// counterInstrument pairs one engine counter with the observable that
// reports it.
type counterInstrument struct {
	id      goLink.MetricID
	counter metric.Int64ObservableCounter
}

// latencyInstrument reports the login latency histogram as one cumulative
// gauge per bucket bound plus a total sample count, mirroring the
// Prometheus text exposition of the same histogram.
type latencyInstrument struct {
	id      goLink.MetricID
	buckets [8]metric.Int64ObservableGauge
	count   metric.Int64ObservableGauge
}

// OTelExporter registers the engine's linking metrics on an OpenTelemetry
// meter. Values are observed on collection, so the engine's hot path
// stays free of any OpenTelemetry calls.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	counters     []counterInstrument
	latencies    []latencyInstrument
	auditDropped metric.Int64ObservableCounter
}

// NewOTelExporter wires an engine's metrics into meter.
func NewOTelExporter(meter metric.Meter, engine *goLink.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource is NewOTelExporter for any snapshot source,
// which tests use to feed fixed values through the exporter.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{source: source}

	var observables []metric.Observable
	var err error
	if observables, err = exporter.buildInstruments(meter); err != nil {
		return nil, err
	}

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) buildInstruments(meter metric.Meter) ([]metric.Observable, error) {
	observables := make([]metric.Observable, 0,
		len(internaldefs.CounterDefs)+len(internaldefs.HistogramDefs)*9+1)

	for _, def := range internaldefs.CounterDefs {
		counter, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", def.Name, err)
		}
		e.counters = append(e.counters, counterInstrument{id: def.ID, counter: counter})
		observables = append(observables, counter)
	}

	for _, def := range internaldefs.HistogramDefs {
		instrument := latencyInstrument{id: def.ID}
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			name := def.Name + "_bucket_le_" + suffix
			bucket, err := meter.Int64ObservableGauge(name,
				metric.WithDescription("Cumulative latency bucket count."))
			if err != nil {
				return nil, fmt.Errorf("create latency bucket gauge %s: %w", name, err)
			}
			instrument.buckets[i] = bucket
			observables = append(observables, bucket)
		}
		count, err := meter.Int64ObservableGauge(def.Name+"_count",
			metric.WithDescription("Total latency samples observed."))
		if err != nil {
			return nil, fmt.Errorf("create latency count gauge %s_count: %w", def.Name, err)
		}
		instrument.count = count
		observables = append(observables, count)
		e.latencies = append(e.latencies, instrument)
	}

	auditDropped, err := meter.Int64ObservableCounter(
		"golink_audit_dropped_total",
		metric.WithDescription("Audit events discarded under dispatcher backpressure."),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	e.auditDropped = auditDropped
	observables = append(observables, auditDropped)

	return observables, nil
}

// observe is the collection callback: one snapshot per collection, every
// instrument reported from that snapshot so a scrape is self-consistent.
func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		observer.ObserveInt64(c.counter, int64(snapshot.Counters[c.id]))
	}
	for _, l := range e.latencies {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[l.id]))
		for i, value := range cumulative {
			observer.ObserveInt64(l.buckets[i], int64(value))
		}
		observer.ObserveInt64(l.count, int64(cumulative[len(cumulative)-1]))
	}
	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
