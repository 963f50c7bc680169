// Package stats tracks the counters the Coordinator exposes through
// get_stats() (SPEC_FULL.md §6: fps, avg_render_time_ms, precision_tier,
// tile_counts, cache_bytes).
//
// Grounded on internal/tile/progress.go's atomic-counter + ticker-driven
// redraw shape: a progressBar there accumulates a processed count safe for
// concurrent Increment calls and periodically snapshots it for display;
// Tracker generalizes that into several counters (frame cadence, render
// time, per-status tile counts) snapshotted on demand instead of on a
// fixed redraw tick, since a host pulls stats rather than watching a
// console.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/deepzoom/mandelcore/internal/precision"
)

// Stats is the value returned by Snapshot, matching spec §6's get_stats()
// shape.
type Stats struct {
	FPS             float64
	AvgRenderTimeMs float64
	PrecisionTier   precision.Tier
	TileCounts      map[string]int64 // keyed by tile status string
	CacheBytes      int64
}

// Tracker accumulates the counters behind Stats. One Tracker is owned by
// the Coordinator and shared (read-only to everyone but it) across the
// pipeline and cache layers.
type Tracker struct {
	mu sync.Mutex

	frameTimes    []time.Time // ring of recent frame completion timestamps
	renderTimeSum float64
	renderCount   int64
	tileCounts    map[string]int64
	tier          precision.Tier
	cacheBytes    atomic.Int64
}

const frameWindow = 60 // frames averaged for fps

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{tileCounts: make(map[string]int64)}
}

// RecordFrame marks the completion of one composited frame, for fps
// averaging over the trailing frameWindow frames.
func (t *Tracker) RecordFrame(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frameTimes = append(t.frameTimes, at)
	if len(t.frameTimes) > frameWindow {
		t.frameTimes = t.frameTimes[len(t.frameTimes)-frameWindow:]
	}
}

// RecordRenderTime folds one tile's render duration into the running
// average (spec §6 avg_render_time_ms).
func (t *Tracker) RecordRenderTime(ms float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderTimeSum += ms
	t.renderCount++
}

// RecordTileStatus increments the count for a tile status (pending,
// rendering, complete, error, cancelled).
func (t *Tracker) RecordTileStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tileCounts[status]++
}

// SetTier records the PrecisionSelector's current tier.
func (t *Tracker) SetTier(tier precision.Tier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tier = tier
}

// SetCacheBytes records the current aggregate cache footprint (L2+L3).
func (t *Tracker) SetCacheBytes(n int64) {
	t.cacheBytes.Store(n)
}

// Snapshot returns the current Stats. fps is computed from the span
// between the oldest and newest recorded frame in the trailing window,
// the same "count over elapsed wall time" approach progress.go's
// draw() uses for its rate display.
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	fps := 0.0
	if n := len(t.frameTimes); n > 1 {
		elapsed := t.frameTimes[n-1].Sub(t.frameTimes[0]).Seconds()
		if elapsed > 0 {
			fps = float64(n-1) / elapsed
		}
	}

	avg := 0.0
	if t.renderCount > 0 {
		avg = t.renderTimeSum / float64(t.renderCount)
	}

	counts := make(map[string]int64, len(t.tileCounts))
	for k, v := range t.tileCounts {
		counts[k] = v
	}

	return Stats{
		FPS:             fps,
		AvgRenderTimeMs: avg,
		PrecisionTier:   t.tier,
		TileCounts:      counts,
		CacheBytes:      t.cacheBytes.Load(),
	}
}
