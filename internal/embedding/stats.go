package embedding

import (
	"context"
	"sort"
	"sync"
	"time"

	"docrank/internal/metrics"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// StatsSnapshot is a point-in-time aggregate of embedding call
// latency samples.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Stats tracks recent embedding call latencies within a rolling window.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	durations := make([]int64, len(s.samples))
	var sum int64
	min := s.samples[0].durationMs
	max := s.samples[0].durationMs
	for i, sm := range s.samples {
		durations[i] = sm.durationMs
		sum += sm.durationMs
		if sm.durationMs < min {
			min = sm.durationMs
		}
		if sm.durationMs > max {
			max = sm.durationMs
		}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	return StatsSnapshot{
		Count: len(durations),
		MinMs: min,
		MaxMs: max,
		AvgMs: float64(sum) / float64(len(durations)),
		P50Ms: percentile(durations, 0.50),
		P95Ms: percentile(durations, 0.95),
		P99Ms: percentile(durations, 0.99),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	i := 0
	for ; i < len(s.samples); i++ {
		if s.samples[i].timestamp.After(cutoff) {
			break
		}
	}
	if i > 0 {
		s.samples = append(s.samples[:0], s.samples[i:]...)
	}
}

func percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}

// InstrumentedEmbedder wraps an Embedder and records per-call
// latencies into a Stats window.
type InstrumentedEmbedder struct {
	Embedder
	stats *Stats
}

func Instrument(emb Embedder, stats *Stats) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{Embedder: emb, stats: stats}
}

func (e *InstrumentedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := e.Embedder.EmbedQuery(ctx, text)
	e.record(time.Since(start))
	return vec, err
}

func (e *InstrumentedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := e.Embedder.EmbedBatch(ctx, texts)
	e.record(time.Since(start))
	return vectors, err
}

func (e *InstrumentedEmbedder) record(d time.Duration) {
	e.stats.Record(d.Milliseconds())
	metrics.ObserveEmbeddingCall(d)
}
