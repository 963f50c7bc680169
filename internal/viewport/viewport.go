// Package viewport models the engine's input viewport and the bounded
// history of recent viewport changes the ViewportPredictor tracks
// (SPEC_FULL.md §3 "Viewport history", §4.8).
package viewport

import "time"

// Viewport is the host-facing request: a center (string-backed so no
// precision is lost at the boundary, per spec §3), a scale spanning the
// short screen axis, pixel dimensions, and an iteration budget.
type Viewport struct {
	CenterReStr string
	CenterImStr string
	CenterRe    float64 // f64 projection of CenterReStr, for fast comparisons
	CenterIm    float64
	Scale       float64
	Width       int
	Height      int
	MaxIter     int
}

// Validate checks the invariants spec §3 requires: scale > 0, max_iter >= 64.
func (v Viewport) Validate() error {
	if v.Scale <= 0 {
		return errInvalidScale
	}
	if v.MaxIter < 64 {
		return errInvalidMaxIter
	}
	return nil
}

// Sample is one point in the viewport history deque.
type Sample struct {
	CenterX, CenterY, Scale float64
	T                       time.Time
}

const (
	historyMaxEntries = 20
	historyMaxAge     = time.Second
)
