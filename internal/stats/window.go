// Package stats aggregates navigation command latencies and exports engine
// metrics to prometheus.
package stats

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at      time.Time
	key     string
	handled bool
	micros  int64
}

// Latency is an aggregate of command durations, in microseconds.
type Latency struct {
	Count int     `json:"count"`
	MinUs int64   `json:"min_us"`
	MaxUs int64   `json:"max_us"`
	AvgUs float64 `json:"avg_us"`
	P50Us float64 `json:"p50_us"`
	P95Us float64 `json:"p95_us"`
	P99Us float64 `json:"p99_us"`
}

// Snapshot is a point-in-time view of the window.
type Snapshot struct {
	All     Latency            `json:"all"`
	Handled int                `json:"handled"`
	ByKey   map[string]Latency `json:"by_key"`
}

// Window keeps the command samples of a rolling time window.
type Window struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewWindow(maxAge time.Duration) *Window {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Window{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds one command sample. Negative durations count as zero.
func (w *Window) Record(key string, handled bool, d time.Duration) {
	us := d.Microseconds()
	if us < 0 {
		us = 0
	}
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	w.samples = append(w.samples, sample{at: now, key: key, handled: handled, micros: us})
}

func (w *Window) Snapshot() Snapshot {
	now := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pruneLocked(now)
	snap := Snapshot{ByKey: map[string]Latency{}}
	all := make([]int64, 0, len(w.samples))
	byKey := map[string][]int64{}
	for _, s := range w.samples {
		all = append(all, s.micros)
		if s.handled {
			snap.Handled++
			byKey[s.key] = append(byKey[s.key], s.micros)
		}
	}
	snap.All = aggregate(all)
	for k, v := range byKey {
		snap.ByKey[k] = aggregate(v)
	}
	return snap
}

func (w *Window) pruneLocked(now time.Time) {
	cutoff := now.Add(-w.maxAge)
	keep := w.samples[:0]
	for _, s := range w.samples {
		if !s.at.Before(cutoff) {
			keep = append(keep, s)
		}
	}
	w.samples = keep
}

func aggregate(values []int64) Latency {
	if len(values) == 0 {
		return Latency{}
	}
	slices.Sort(values)
	var sum int64
	for _, v := range values {
		sum += v
	}
	return Latency{
		Count: len(values),
		MinUs: values[0],
		MaxUs: values[len(values)-1],
		AvgUs: float64(sum) / float64(len(values)),
		P50Us: percentile(values, 50),
		P95Us: percentile(values, 95),
		P99Us: percentile(values, 99),
	}
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
