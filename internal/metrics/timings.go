package metrics

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// StageStats summarises the observed durations for one stage.
type StageStats struct {
	Stage    string  `json:"stage"`
	Count    int     `json:"count"`
	LastMS   float64 `json:"last_ms"`
	MeanMS   float64 `json:"mean_ms"`
	StdDevMS float64 `json:"stddev_ms"`
}

// StageTimings collects per-stage durations. It is safe for concurrent use;
// detector goroutines report into it alongside the lane stages.
type StageTimings struct {
	mu      sync.Mutex
	window  int
	samples map[string][]float64
}

// NewStageTimings keeps the most recent window samples per stage
func NewStageTimings(window int) *StageTimings {
	if window < 1 {
		window = 1
	}
	return &StageTimings{window: window, samples: make(map[string][]float64)}
}

// Observe records one duration. Its signature matches algorithms.Observer.
func (t *StageTimings) Observe(stage string, elapsed time.Duration) {
	ms := float64(elapsed) / float64(time.Millisecond)

	t.mu.Lock()
	defer t.mu.Unlock()

	s := append(t.samples[stage], ms)
	if len(s) > t.window {
		s = s[len(s)-t.window:]
	}
	t.samples[stage] = s
}

// Snapshot returns stats for every stage, sorted by name.
func (t *StageTimings) Snapshot() []StageStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]StageStats, 0, len(t.samples))
	for stage, s := range t.samples {
		if len(s) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(s, nil)
		if len(s) == 1 {
			std = 0
		}
		out = append(out, StageStats{
			Stage:    stage,
			Count:    len(s),
			LastMS:   s[len(s)-1],
			MeanMS:   mean,
			StdDevMS: std,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Stage < out[j].Stage })
	return out
}

// Reset drops every sample.
func (t *StageTimings) Reset() {
	t.mu.Lock()
	t.samples = make(map[string][]float64)
	t.mu.Unlock()
}
