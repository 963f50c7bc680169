// Package perturb implements the per-pixel perturbation-theory inner loop:
// evaluating a pixel as a delta orbit against one shared high-precision
// reference orbit, entirely at float64 precision (SPEC_FULL.md §4.4).
//
// Grounded on internal/tile/resample.go's per-pixel sampling loop shape
// (tight loop over a small fixed set of float64 scalars, no allocation).
package perturb

import "math"

// Interior is the smoothed escape count returned for pixels that never
// leave the escape radius within max_iter.
const Interior = -1.0

// Result is the outcome of evaluating one pixel's delta orbit.
type Result struct {
	Smoothed float64 // Interior (-1) if bounded, else a smoothed escape count >= 0
	Glitched bool    // true if the reference orbit diverged from this pixel's true orbit
	GlitchAt int     // iteration index at which the glitch was first detected, if Glitched
}

// GlitchThreshold is the default ε in |Z_n|² < ε·|δ_n|² (spec §4.4 names a
// range of 1e-3 to 1e-6; this picks the conservative middle).
const GlitchThreshold = 1e-4

// Kernel holds the inputs shared by every pixel evaluated against one
// reference orbit.
type Kernel struct {
	OrbitRe, OrbitIm, OrbitNormSq []float64
	MaxIter                       int
	EscapeRadiusSq                float64
	GlitchThreshold               float64
}

// Eval runs the delta-orbit loop for one pixel, where deltaCRe/deltaCIm is
// δc = c_pixel − C computed at float64 precision.
func (k Kernel) Eval(deltaCRe, deltaCIm float64) Result {
	var dRe, dIm float64
	limit := k.MaxIter
	if n := len(k.OrbitRe) - 1; n < limit {
		limit = n
	}
	glitchThreshold := k.GlitchThreshold
	if glitchThreshold == 0 {
		glitchThreshold = GlitchThreshold
	}

	for n := 0; n < limit; n++ {
		zRe, zIm := k.OrbitRe[n], k.OrbitIm[n]
		rRe := zRe + dRe
		rIm := zIm + dIm
		rNormSq := rRe*rRe + rIm*rIm

		if rNormSq > k.EscapeRadiusSq {
			rAbs := math.Sqrt(rNormSq)
			mu := float64(n+1) - math.Log(math.Log(rAbs))/math.Log(2)
			if mu < 0 {
				mu = 0
			}
			return Result{Smoothed: mu}
		}

		deltaNormSq := dRe*dRe + dIm*dIm
		if k.OrbitNormSq[n] < glitchThreshold*deltaNormSq {
			// Glitched pixels are reported with an escape count of 0 (spec §4.4).
			return Result{Smoothed: 0, Glitched: true, GlitchAt: n}
		}

		// delta <- 2*Z*delta + delta^2 + deltaC
		newRe := 2*(zRe*dRe-zIm*dIm) + (dRe*dRe - dIm*dIm) + deltaCRe
		newIm := 2*(zRe*dIm+zIm*dRe) + 2*dRe*dIm + deltaCIm
		dRe, dIm = newRe, newIm
	}

	return Result{Smoothed: Interior}
}
