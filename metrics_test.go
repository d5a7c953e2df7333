package goLink

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLinkSuccess)

	if got := m.Value(MetricLinkSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLinkSuccess)
	m.Inc(MetricLinkSuccess)
	m.Inc(MetricLinkSuccess)

	if got := m.Value(MetricLinkSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricVerifySuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricVerifySuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		25 * time.Millisecond,
		75 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		2 * time.Second,
		4 * time.Second,
		10 * time.Second,
	}

	for _, d := range observations {
		m.Observe(MetricLoginLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricLoginLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricLinkSuccess)
	m.Inc(MetricLinkInvalidCredentials)
	m.Inc(MetricLinkInvalidCredentials)
	m.Observe(MetricLoginLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricLinkSuccess] != 1 {
		t.Fatalf("expected MetricLinkSuccess=1 got %d", snap.Counters[MetricLinkSuccess])
	}
	if snap.Counters[MetricLinkInvalidCredentials] != 2 {
		t.Fatalf("expected MetricLinkInvalidCredentials=2 got %d", snap.Counters[MetricLinkInvalidCredentials])
	}
	if len(snap.Histograms[MetricLoginLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricLoginLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricLoginLatency][0])
	}
}

func TestMetricsDisabledSnapshotEmpty(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLinkSuccess)
	m.Observe(MetricLoginLatency, time.Millisecond)

	snap := m.Snapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty counters, got %d entries", len(snap.Counters))
	}
	if len(snap.Histograms) != 0 {
		t.Fatalf("expected empty histograms, got %d entries", len(snap.Histograms))
	}
}

func TestEngineSnapshotReflectsFlowCounters(t *testing.T) {
	engine, _, _, _, _ := newLinkEngine(t, func(cfg *Config) {
		cfg.Metrics.EnableLatencyHistograms = true
	})

	result, err := engine.BeginLink(context.Background(), "alice_ig", "wrong-password", "owner-1")
	if err != nil {
		t.Fatalf("BeginLink failed: %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed result, got %v", result.Status)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricLinkInvalidCredentials] != 1 {
		t.Fatalf("expected one invalid-credentials increment, got %d", snap.Counters[MetricLinkInvalidCredentials])
	}

	var observed uint64
	for _, v := range snap.Histograms[MetricLoginLatency] {
		observed += v
	}
	if observed != 1 {
		t.Fatalf("expected one login latency observation, got %d", observed)
	}
}
