package enrich

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Latency summarizes the samples held in one rolling window.
type Latency struct {
	Count int     `json:"count"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// StatsSnapshot reports provider calls and cache hits as separate windows,
// so cheap cache reads never drag down the provider percentiles.
type StatsSnapshot struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`

	Calls     Latency `json:"calls"`
	CacheHits Latency `json:"cache_hits"`
	Failures  int64   `json:"failures"` // lifetime
}

type sample struct {
	at time.Time
	d  time.Duration
}

// window keeps the samples recorded within maxAge.
type window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func (w *window) add(now time.Time, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, d: max(d, 0)})
}

func (w *window) summary(now time.Time) Latency {
	w.mu.Lock()
	w.pruneLocked(now)
	ds := make([]time.Duration, len(w.samples))
	for i, s := range w.samples {
		ds[i] = s.d
	}
	w.mu.Unlock()

	if len(ds) == 0 {
		return Latency{}
	}
	slices.Sort(ds)

	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return Latency{
		Count: len(ds),
		MinMs: ms(ds[0]),
		MaxMs: ms(ds[len(ds)-1]),
		AvgMs: ms(sum) / float64(len(ds)),
		P50Ms: percentile(ds, 50),
		P95Ms: percentile(ds, 95),
		P99Ms: percentile(ds, 99),
	}
}

func (w *window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	w.samples = slices.DeleteFunc(w.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// LLMStats tracks enrichment latency. Provider calls and cache hits each
// keep their own rolling window; failures are a lifetime counter.
type LLMStats struct {
	calls    window
	hits     window
	failures atomic.Int64
}

func NewLLMStats(maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		calls: window{maxAge: maxAge, samples: make([]sample, 0, 256)},
		hits:  window{maxAge: maxAge},
	}
}

// RecordCall records a completed provider round trip.
func (s *LLMStats) RecordCall(d time.Duration) { s.calls.add(time.Now(), d) }

// RecordCacheHit records a reply served from the cache, timed from the
// start of the lookup.
func (s *LLMStats) RecordCacheHit(d time.Duration) { s.hits.add(time.Now(), d) }

func (s *LLMStats) RecordFailure() { s.failures.Add(1) }

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()
	return StatsSnapshot{
		Calls:     s.calls.summary(now),
		CacheHits: s.hits.summary(now),
		Failures:  s.failures.Load(),
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []time.Duration, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return ms(sorted[0])
	case pct >= 100:
		return ms(sorted[len(sorted)-1])
	}

	rank := float64(len(sorted)-1) * pct / 100
	lower := int(rank)
	if lower+1 >= len(sorted) {
		return ms(sorted[lower])
	}
	lo, hi := ms(sorted[lower]), ms(sorted[lower+1])
	return lo + (hi-lo)*(rank-float64(lower))
}
