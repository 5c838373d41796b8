package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestDisabledMetricsAreNoOps(t *testing.T) {
	m := New(Config{Enabled: false, EnableLatency: true})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricRequestLatency, time.Millisecond)

	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("expected disabled counter to stay at zero")
	}
	if m.LatencyEnabled() {
		t.Fatal("latency must not be enabled when metrics are disabled")
	}
	s := m.Snapshot()
	if len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestCountersConcurrent(t *testing.T) {
	m := New(Config{Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Inc(MetricQuerySuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricQuerySuccess); got != 1600 {
		t.Fatalf("expected 1600, got %d", got)
	}
	if got := m.Snapshot().Counters[MetricQuerySuccess]; got != 1600 {
		t.Fatalf("expected snapshot 1600, got %d", got)
	}
}

func TestLatencyBuckets(t *testing.T) {
	m := New(Config{Enabled: true, EnableLatency: true})
	for _, d := range []time.Duration{
		10 * time.Millisecond,
		75 * time.Millisecond,
		400 * time.Millisecond,
		3 * time.Second,
		time.Minute,
	} {
		m.Observe(MetricRequestLatency, d)
	}
	m.Observe(MetricQuerySuccess, time.Millisecond)

	got := m.Snapshot().Histograms[MetricRequestLatency]
	want := []uint64{1, 1, 0, 1, 0, 0, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d (all %v)", i, want[i], got[i], got)
		}
	}
	if _, ok := m.Snapshot().Histograms[MetricQuerySuccess]; ok {
		t.Fatal("only request latency has a histogram")
	}
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLogout)
	m.Observe(MetricRequestLatency, time.Second)
	if m.Value(MetricLogout) != 0 || m.Enabled() {
		t.Fatal("nil metrics must be inert")
	}
}
