// Package prefetch converts viewport interaction state and motion
// predictions into low-priority tile requests (SPEC_FULL.md §4.9, spec
// §4.9).
//
// New relative to the teacher: pspoerri/geotiff2pmtiles has no analogue
// for speculative, confidence-weighted tile scheduling (its tile job list
// is computed once, exhaustively, from static bounds — internal/tile/
// generator.go's coord.TilesInBounds). This package instead consumes
// internal/viewport's predictions and internal/tilegrid's visible-set math
// to decide, every frame, which *extra* tiles to queue at low priority.
package prefetch

import "github.com/deepzoom/mandelcore/internal/tilegrid"

// Strategy names which of the three spec §4.9 prefetch strategies produced
// a request set, for logging/debugging.
type Strategy int

const (
	StrategyNeighbors Strategy = iota
	StrategyRing
	StrategyPredicted
)

func (s Strategy) String() string {
	switch s {
	case StrategyNeighbors:
		return "neighbors"
	case StrategyRing:
		return "ring"
	case StrategyPredicted:
		return "predicted"
	default:
		return "unknown"
	}
}

// Request is a single speculative tile fetch, tagged with the strategy
// that produced it so the pipeline can cancel the whole batch on a
// direction reversal (spec §4.9: "tagged for cancellation on direction
// reversal").
type Request struct {
	Tile     tilegrid.Identity
	Strategy Strategy
}

// PendingSet reports tiles already queued or currently rendering, so
// Plan can deduplicate against it (spec §4.9).
type PendingSet interface {
	Contains(id tilegrid.Identity) bool
}

// neighborOffsets is the 4-connected neighborhood used by the interacting
// strategy.
var neighborOffsets = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Neighbors4 returns the 4-connected neighbors of every tile in visible,
// capped at 4 total (spec §4.9 "interacting" strategy).
func Neighbors4(visible []tilegrid.Identity, pending PendingSet) []Request {
	const cap4 = 4
	out := make([]Request, 0, cap4)
	seen := make(map[tilegrid.Identity]bool, len(visible))
	for _, t := range visible {
		seen[t] = true
	}
	for _, t := range visible {
		for _, off := range neighborOffsets {
			n := tilegrid.Identity{Level: t.Level, X: t.X + off[0], Y: t.Y + off[1], MaxIter: t.MaxIter}
			if seen[n] || (pending != nil && pending.Contains(n)) {
				continue
			}
			seen[n] = true
			out = append(out, Request{Tile: n, Strategy: StrategyNeighbors})
			if len(out) >= cap4 {
				return out
			}
		}
	}
	return out
}

// Ring edgeOnly returns the one-tile ring surrounding the rectangle
// [xMin,xMax]x[yMin,yMax] at level, visiting only the border cells (spec
// §4.9 "idle, confidence<0.3" strategy: "unbounded but small").
func Ring(level, xMin, xMax, yMin, yMax, maxIter int, pending PendingSet) []Request {
	rxMin, rxMax := xMin-1, xMax+1
	ryMin, ryMax := yMin-1, yMax+1

	var out []Request
	add := func(x, y int) {
		id := tilegrid.Identity{Level: level, X: x, Y: y, MaxIter: maxIter}
		if pending != nil && pending.Contains(id) {
			return
		}
		out = append(out, Request{Tile: id, Strategy: StrategyRing})
	}
	for x := rxMin; x <= rxMax; x++ {
		add(x, ryMin)
		add(x, ryMax)
	}
	for y := ryMin + 1; y <= ryMax-1; y++ {
		add(rxMin, y)
		add(rxMax, y)
	}
	return out
}
