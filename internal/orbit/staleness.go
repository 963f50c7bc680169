package orbit

import "math"

// NeedsRecompute implements the recompute policy consulted by the
// Coordinator (spec §4.3): an orbit is stale if the new center has drifted
// more than 10% of the current scale from the orbit's center, or if the
// scale ratio falls outside [0.5, 2.0]. String equality is checked first —
// when strings differ but the f64 parse can't tell them apart, we're at the
// float precision floor and must recompute regardless.
func (o *Orbit) NeedsRecompute(newCenterReStr, newCenterImStr string, newCenterRe, newCenterIm, newScale float64) bool {
	if o == nil {
		return true
	}

	stringsDiffer := newCenterReStr != o.CenterReStr || newCenterImStr != o.CenterImStr
	floatsIndistinguishable := newCenterRe == o.CenterRe && newCenterIm == o.CenterIm
	if stringsDiffer && floatsIndistinguishable {
		return true
	}

	dx := newCenterRe - o.CenterRe
	dy := newCenterIm - o.CenterIm
	drift := math.Hypot(dx, dy)
	if drift > 0.10*o.Scale {
		return true
	}

	if o.Scale <= 0 {
		return true
	}
	ratio := newScale / o.Scale
	if ratio < 0.5 || ratio > 2.0 {
		return true
	}

	return false
}
