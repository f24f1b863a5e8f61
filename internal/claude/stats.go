package claude

import (
	"sort"
	"sync"
	"time"
)

// StatsSnapshot is a point-in-time aggregate of dispatch latency samples.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats tracks recent dispatch latencies within a rolling window.
type Stats struct {
	mu     sync.Mutex
	at     []time.Time
	ms     []int64
	window time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Record adds one latency sample, pruning samples older than the window.
func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.at = append(s.at, now)
	s.ms = append(s.ms, durationMs)
}

// Snapshot aggregates the samples still inside the window.
func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	if len(s.ms) == 0 {
		return StatsSnapshot{}
	}

	values := make([]int64, len(s.ms))
	copy(values, s.ms)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	var sum int64
	for _, v := range values {
		sum += v
	}

	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	keep := 0
	for i, at := range s.at {
		if !at.Before(cutoff) {
			s.at[keep] = s.at[i]
			s.ms[keep] = s.ms[i]
			keep++
		}
	}
	s.at = s.at[:keep]
	s.ms = s.ms[:keep]
}

// percentile interpolates linearly between the two nearest sorted samples.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	idx := float64(len(sorted)-1) * pct / 100.0
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo]) + (float64(sorted[hi])-float64(sorted[lo]))*frac
}
