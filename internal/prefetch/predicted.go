package prefetch

import (
	"math"

	"github.com/deepzoom/mandelcore/internal/tilegrid"
)

// predictedLookaheadMs is the fixed lookahead used by the predicted
// strategy (spec §4.9: "at lookahead 200 ms").
const predictedLookaheadMs = 200

// VisibleRect carries the current viewport's tile-grid footprint, as
// computed once per frame by the Coordinator from
// internal/tilegrid.VisibleBounds, in tile coordinates.
type VisibleRect struct {
	Level                  int
	XMin, XMax, YMin, YMax int
	MaxIter                int
}

// Predicted computes the spec §4.9 "idle, confidence>=0.3" strategy: the
// predicted visible set at 200ms lookahead, set-differenced against the
// current visible set, biased 2 extra rows/columns on the leading pan
// edge, plus zoom-aware extra tiles (children on zoom-in, parent+neighbors
// on zoom-out). zoomRate is a magnification rate: above 1 while zooming in.
// Capped at ceil(16*confidence).
func Predicted(current VisibleRect, predCenterRe, predCenterIm, predScale float64, panVX, panVY, zoomRate, confidence float64, pending PendingSet) []Request {
	cap16 := int(math.Ceil(16 * confidence))
	if cap16 <= 0 {
		return nil
	}

	scale := tilegrid.TileScale(current.Level)
	halfWidth := (float64(current.XMax-current.XMin+1) / 2) * scale
	halfHeight := (float64(current.YMax-current.YMin+1) / 2) * scale

	predictedTiles := tilegrid.VisibleSet(current.Level, predCenterRe, predCenterIm, halfWidth, halfHeight, current.MaxIter)

	currentSet := make(map[tilegrid.Identity]bool, (current.XMax-current.XMin+1)*(current.YMax-current.YMin+1))
	for x := current.XMin; x <= current.XMax; x++ {
		for y := current.YMin; y <= current.YMax; y++ {
			currentSet[tilegrid.Identity{Level: current.Level, X: x, Y: y, MaxIter: current.MaxIter}] = true
		}
	}

	out := make([]Request, 0, cap16)
	push := func(id tilegrid.Identity) bool {
		if currentSet[id] || (pending != nil && pending.Contains(id)) {
			return false
		}
		currentSet[id] = true
		out = append(out, Request{Tile: id, Strategy: StrategyPredicted})
		return len(out) >= cap16
	}

	for _, t := range predictedTiles {
		if push(t) {
			return out
		}
	}

	// Bias 2 extra rows/columns on the leading pan edge.
	leadX, leadY := 0, 0
	if panVX > 0 {
		leadX = 1
	} else if panVX < 0 {
		leadX = -1
	}
	if panVY > 0 {
		leadY = 1
	} else if panVY < 0 {
		leadY = -1
	}
	if leadX != 0 {
		edgeX := current.XMax + 1
		if leadX < 0 {
			edgeX = current.XMin - 1
		}
		for extra := 0; extra < 2; extra++ {
			for y := current.YMin; y <= current.YMax; y++ {
				if push(tilegrid.Identity{Level: current.Level, X: edgeX - extra*leadX, Y: y, MaxIter: current.MaxIter}) {
					return out
				}
			}
		}
	}
	if leadY != 0 {
		edgeY := current.YMax + 1
		if leadY < 0 {
			edgeY = current.YMin - 1
		}
		for extra := 0; extra < 2; extra++ {
			for x := current.XMin; x <= current.XMax; x++ {
				if push(tilegrid.Identity{Level: current.Level, X: x, Y: edgeY - extra*leadY, MaxIter: current.MaxIter}) {
					return out
				}
			}
		}
	}

	// Zoom-aware extras.
	const zoomInThreshold = 1.05
	const zoomOutThreshold = 0.95
	centerX := (current.XMin + current.XMax) / 2
	centerY := (current.YMin + current.YMax) / 2
	if zoomRate > zoomInThreshold {
		childLevel := current.Level + 1
		for dx := 0; dx < 4; dx++ {
			for dy := 0; dy < 4; dy++ {
				id := tilegrid.Identity{Level: childLevel, X: 2*centerX + dx - 2, Y: 2*centerY + dy - 2, MaxIter: current.MaxIter}
				if push(id) {
					return out
				}
			}
		}
	} else if zoomRate < zoomOutThreshold && current.Level > 0 {
		parentLevel := current.Level - 1
		parentX, parentY := centerX/2, centerY/2
		parent := tilegrid.Identity{Level: parentLevel, X: parentX, Y: parentY, MaxIter: current.MaxIter}
		if push(parent) {
			return out
		}
		for _, off := range neighborOffsets {
			id := tilegrid.Identity{Level: parentLevel, X: parentX + off[0], Y: parentY + off[1], MaxIter: current.MaxIter}
			if push(id) {
				return out
			}
		}
	}

	return out
}
