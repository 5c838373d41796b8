package internaldefs

import (
	"strings"
	"testing"

	goSocial "github.com/MrEthical07/goSocial"
	"github.com/google/go-cmp/cmp"
)

func TestEveryCounterHasADefinition(t *testing.T) {
	seen := make(map[goSocial.MetricID]bool)
	for _, def := range CounterDefs {
		if seen[def.ID] {
			t.Fatalf("duplicate definition for %s", def.Name)
		}
		seen[def.ID] = true
		if !strings.HasPrefix(def.Name, "gosocial_") || !strings.HasSuffix(def.Name, "_total") {
			t.Errorf("counter %q must be gosocial_*_total", def.Name)
		}
	}
	for id := goSocial.MetricID(0); id < goSocial.MetricRequestLatency; id++ {
		if !seen[id] {
			t.Errorf("metric %d has no counter definition", id)
		}
	}
}

func TestBoundsAndSuffixesAlign(t *testing.T) {
	if len(HistogramBounds) != len(HistogramBoundSuffix) || len(HistogramBounds) != 8 {
		t.Fatalf("bounds %d, suffixes %d", len(HistogramBounds), len(HistogramBoundSuffix))
	}
	for i, b := range HistogramBounds {
		want := strings.ReplaceAll(b, ".", "_")
		if b == "+Inf" {
			want = "inf"
		}
		if HistogramBoundSuffix[i] != want {
			t.Errorf("suffix %d = %q, want %q", i, HistogramBoundSuffix[i], want)
		}
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 0, 2, 0, 0, 0, 0, 3, 99}))
	want := [8]uint64{1, 1, 3, 3, 3, 3, 3, 6}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cumulative mismatch (-want +got):\n%s", diff)
	}
}
