// Package pipeline implements the TilePipeline: visible-set computation,
// per-tile precision selection, worker dispatch, and cache coherence
// (SPEC_FULL.md §4.6).
//
// Grounded on internal/tile/generator.go's job-channel + worker-pool shape,
// generalized from a fixed one-shot pyramid sweep into a per-frame,
// priority-ordered, cancellable dispatch loop driven by
// golang.org/x/sync/errgroup instead of a raw sync.WaitGroup (the teacher
// predates errgroup's adoption in the pack; inference-sim's use of it for
// bounded concurrent fan-out is the more direct model for a dispatch gate
// that also needs first-error propagation).
package pipeline

import (
	"github.com/deepzoom/mandelcore/internal/precision"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
)

// Priority orders dispatch: visible tiles are scanned before prefetch
// tiles (spec §4.6 "Ordering and fairness"), though neither preempts an
// in-flight job of the other.
type Priority uint8

const (
	PriorityVisible Priority = iota
	PriorityPrefetch
)

// Status is a tile's lifecycle state (spec §3 "Tile").
type Status uint8

const (
	StatusPending Status = iota
	StatusRendering
	StatusComplete
	StatusError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRendering:
		return "rendering"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Job carries everything a worker needs to render one tile without
// touching shared mutable state beyond the (read-only) reference orbit
// (spec §4.6 "Worker protocol").
type Job struct {
	Tile     tilegrid.Identity
	Bounds   tilegrid.Bounds
	Tier     precision.Tier
	Priority Priority

	CenterReStr string // high-precision viewport center, for orbit-relative delta math
	CenterImStr string

	TileSizePx int
}

// Result is what a worker reports back for a dispatched Job.
type Result struct {
	Job      Job
	Status   Status
	Data     []float32 // row-major TileSizePx*TileSizePx smoothed iteration values; nil on error/cancel
	Err      error
	Glitched bool // true if any pixel in the tile glitched (perturbation/arbitrary tiers only)
	RenderMs float64
}
