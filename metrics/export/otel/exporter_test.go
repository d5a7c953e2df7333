package otel

import (
	"context"
	"sync"
	"testing"

	goLink "github.com/MrEthical07/goLink"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goLink.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goLink.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goLink.MetricsSnapshot{
		Counters:   make(map[goLink.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goLink.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		next := make([]uint64, len(buckets))
		copy(next, buckets)
		out.Histograms[k] = next
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("golink-test")

	src := &fakeSource{
		snapshot: goLink.MetricsSnapshot{
			Counters: map[goLink.MetricID]uint64{
				goLink.MetricLinkSuccess: 3,
			},
			Histograms: map[goLink.MetricID][]uint64{
				goLink.MetricLoginLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if got := metricValue(t, rm, "golink_link_success_total"); got != 3 {
		t.Fatalf("golink_link_success_total: got %d want 3", got)
	}
	if got := metricValue(t, rm, "golink_audit_dropped_total"); got != 1 {
		t.Fatalf("golink_audit_dropped_total: got %d want 1", got)
	}
	// One observation per bucket; the exported buckets are cumulative.
	if got := metricValue(t, rm, "golink_login_latency_seconds_bucket_le_0_05"); got != 1 {
		t.Fatalf("first latency bucket: got %d want 1", got)
	}
	if got := metricValue(t, rm, "golink_login_latency_seconds_bucket_le_inf"); got != 8 {
		t.Fatalf("last latency bucket: got %d want 8", got)
	}
	if got := metricValue(t, rm, "golink_login_latency_seconds_count"); got != 8 {
		t.Fatalf("latency sample count: got %d want 8", got)
	}
}

// metricValue digs the single data point for name out of a collection.
func metricValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) != 1 {
					t.Fatalf("metric %s: expected one data point, got %d", name, len(data.DataPoints))
				}
				return data.DataPoints[0].Value
			case metricdata.Gauge[int64]:
				if len(data.DataPoints) != 1 {
					t.Fatalf("metric %s: expected one data point, got %d", name, len(data.DataPoints))
				}
				return data.DataPoints[0].Value
			default:
				t.Fatalf("metric %s: unexpected data type %T", name, m.Data)
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestExporterRejectsNilSource(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("golink-test")

	if _, err := NewOTelExporterFromSource(meter, nil); err == nil {
		t.Fatal("expected error for nil source")
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("golink-test")

	src := &fakeSource{
		snapshot: goLink.MetricsSnapshot{
			Counters: map[goLink.MetricID]uint64{
				goLink.MetricLinkSuccess: 1,
			},
			Histograms: map[goLink.MetricID][]uint64{
				goLink.MetricLoginLatency: {1, 0, 0, 0, 0, 0, 0, 0},
			},
		},
	}

	exp, err := NewOTelExporterFromSource(meter, src)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goLink.MetricLinkSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
