package claude

import (
	"testing"
	"time"
)

func TestStats_EmptySnapshot(t *testing.T) {
	s := NewStats(time.Hour)
	snap := s.Snapshot()
	if snap.Count != 0 || snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
}

func TestStats_Aggregates(t *testing.T) {
	s := NewStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400} {
		s.Record(ms)
	}

	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("count: got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 400 {
		t.Errorf("min/max: got %d/%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 250 {
		t.Errorf("avg: got %f", snap.AvgMs)
	}
	if snap.P50Ms != 250 {
		t.Errorf("p50: got %f", snap.P50Ms)
	}
}

func TestStats_NegativeClampedToZero(t *testing.T) {
	s := NewStats(time.Hour)
	s.Record(-5)
	snap := s.Snapshot()
	if snap.MinMs != 0 {
		t.Errorf("expected negative sample clamped to 0, got %d", snap.MinMs)
	}
}

func TestStats_PrunesOldSamples(t *testing.T) {
	s := NewStats(10 * time.Millisecond)
	s.Record(100)
	time.Sleep(25 * time.Millisecond)
	s.Record(200)

	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected 1 sample after pruning, got %d", snap.Count)
	}
	if snap.MinMs != 200 {
		t.Errorf("expected only the recent sample, got min %d", snap.MinMs)
	}
}

func TestPercentile(t *testing.T) {
	values := []int64{10, 20, 30, 40, 50}
	cases := []struct {
		pct  float64
		want float64
	}{
		{0, 10},
		{50, 30},
		{100, 50},
		{25, 20},
	}
	for _, tc := range cases {
		if got := percentile(values, tc.pct); got != tc.want {
			t.Errorf("percentile(%v): got %f, want %f", tc.pct, got, tc.want)
		}
	}
}
