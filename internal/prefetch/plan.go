package prefetch

import (
	"time"

	"github.com/deepzoom/mandelcore/internal/tilegrid"
	"github.com/deepzoom/mandelcore/internal/viewport"
)

// confidenceThreshold separates the "ring" and "predicted" idle strategies
// (spec §4.9).
const confidenceThreshold = 0.3

// Plan chooses one of the three spec §4.9 strategies from the predictor's
// current state and returns the resulting request batch. now is the
// current wall-clock time (used to evaluate IsInteracting).
func Plan(predictor *viewport.Predictor, current VisibleRect, now time.Time, pending PendingSet) []Request {
	if predictor.IsInteracting(now) {
		return Neighbors4(visibleIdentities(current), pending)
	}

	confidence := predictor.Confidence()
	if confidence < confidenceThreshold {
		return Ring(current.Level, current.XMin, current.XMax, current.YMin, current.YMax, current.MaxIter, pending)
	}

	pred := predictor.Predict(predictedLookaheadMs)
	vx, vy, zoomRate := predictor.PanZoomRate()
	// The predictor reports the scale's growth rate (below 1 while zooming
	// in); Predicted takes the magnification rate, its reciprocal.
	return Predicted(current, pred.CenterX, pred.CenterY, pred.Scale, vx, vy, 1/zoomRate, pred.Confidence, pending)
}

// ShouldCancel reports whether in-flight prefetch requests tagged with the
// given strategy should be dropped because the pan direction just
// reversed (spec §4.9: "tagged for cancellation on direction reversal").
// Requests from the neighbors/ring strategies are never stale in this way
// since they don't encode a pan direction bias.
func ShouldCancel(predictor *viewport.Predictor, req Request) bool {
	if req.Strategy != StrategyPredicted {
		return false
	}
	return predictor.HasDirectionChanged()
}

// visibleIdentities enumerates every tile identity within rect's bounds.
func visibleIdentities(rect VisibleRect) []tilegrid.Identity {
	out := make([]tilegrid.Identity, 0, (rect.XMax-rect.XMin+1)*(rect.YMax-rect.YMin+1))
	for x := rect.XMin; x <= rect.XMax; x++ {
		for y := rect.YMin; y <= rect.YMax; y++ {
			out = append(out, tilegrid.Identity{Level: rect.Level, X: x, Y: y, MaxIter: rect.MaxIter})
		}
	}
	return out
}
