package pipeline

import (
	"math"

	"github.com/deepzoom/mandelcore/internal/dd"
	"github.com/deepzoom/mandelcore/internal/orbit"
	"github.com/deepzoom/mandelcore/internal/perturb"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
)

// renderStandard evaluates every pixel of the tile directly at float64
// precision (spec §4.6 "standard: loops at machine precision on a grid"),
// grounded on other_examples/whalelogic-mandelbrot's per-pixel loop and
// smooth-coloring formula.
func renderStandard(b tilegrid.Bounds, tileSizePx, maxIter int, escapeRadiusSq float64) ([]float32, bool) {
	out := make([]float32, tileSizePx*tileSizePx)
	step := b.Side / float64(tileSizePx)
	originRe := b.CenterRe - b.Side/2
	originIm := b.CenterIm - b.Side/2

	for py := 0; py < tileSizePx; py++ {
		cIm := originIm + (float64(py)+0.5)*step
		for px := 0; px < tileSizePx; px++ {
			cRe := originRe + (float64(px)+0.5)*step
			out[py*tileSizePx+px] = float32(standardPixel(cRe, cIm, maxIter, escapeRadiusSq))
		}
	}
	return out, false
}

func standardPixel(cRe, cIm float64, maxIter int, escapeRadiusSq float64) float64 {
	var zRe, zIm float64
	for n := 0; n < maxIter; n++ {
		zRe2, zIm2 := zRe*zRe, zIm*zIm
		if zRe2+zIm2 > escapeRadiusSq {
			mag := math.Sqrt(zRe2 + zIm2)
			mu := float64(n+1) - math.Log(math.Log(mag))/math.Log(2)
			if mu < 0 {
				mu = 0
			}
			return mu
		}
		newRe := zRe2 - zIm2 + cRe
		newIm := 2*zRe*zIm + cIm
		zRe, zIm = newRe, newIm
	}
	return perturb.Interior
}

// renderDD evaluates every pixel using double-double scalars, for the
// scale band where f64 alone loses too much precision but a full
// perturbation pass is not yet warranted (spec §4.6 "dd: the same loop
// with DoubleDouble scalars").
func renderDD(b tilegrid.Bounds, tileSizePx, maxIter int, escapeRadiusSq float64) ([]float32, bool) {
	out := make([]float32, tileSizePx*tileSizePx)
	step := b.Side / float64(tileSizePx)
	originRe := b.CenterRe - b.Side/2
	originIm := b.CenterIm - b.Side/2

	for py := 0; py < tileSizePx; py++ {
		cIm := originIm + (float64(py)+0.5)*step
		for px := 0; px < tileSizePx; px++ {
			cRe := originRe + (float64(px)+0.5)*step
			out[py*tileSizePx+px] = float32(ddPixel(cRe, cIm, maxIter, escapeRadiusSq))
		}
	}
	return out, false
}

func ddPixel(cRe, cIm float64, maxIter int, escapeRadiusSq float64) float64 {
	c := dd.FromComplex128(cRe, cIm)
	z := dd.Complex{}
	for n := 0; n < maxIter; n++ {
		normSq := z.NormSq().Float64()
		if normSq > escapeRadiusSq {
			mag := math.Sqrt(normSq)
			mu := float64(n+1) - math.Log(math.Log(mag))/math.Log(2)
			if mu < 0 {
				mu = 0
			}
			return mu
		}
		z = z.Sqr().Add(c)
	}
	return perturb.Interior
}

// renderPerturbation evaluates every pixel as a delta orbit against the
// shared reference orbit (spec §4.6 "arbitrary: delegates to the
// perturbation path"), used for both the perturbation and arbitrary
// precision tiers — they differ only in how the orbit itself was computed
// (internal/orbit.LimbsForScale), not in the per-pixel loop.
func renderPerturbation(ref *orbit.Orbit, b tilegrid.Bounds, tileSizePx, maxIter int, escapeRadiusSq, glitchThreshold float64) ([]float32, bool) {
	out := make([]float32, tileSizePx*tileSizePx)
	glitched := false
	step := b.Side / float64(tileSizePx)
	originRe := b.CenterRe - b.Side/2
	originIm := b.CenterIm - b.Side/2

	k := perturb.Kernel{
		OrbitRe:         ref.Re,
		OrbitIm:         ref.Im,
		OrbitNormSq:     ref.NormSq,
		MaxIter:         maxIter,
		EscapeRadiusSq:  escapeRadiusSq,
		GlitchThreshold: glitchThreshold,
	}

	for py := 0; py < tileSizePx; py++ {
		cIm := originIm + (float64(py)+0.5)*step
		for px := 0; px < tileSizePx; px++ {
			cRe := originRe + (float64(px)+0.5)*step
			deltaCRe := cRe - ref.CenterRe
			deltaCIm := cIm - ref.CenterIm

			res := k.Eval(deltaCRe, deltaCIm)
			out[py*tileSizePx+px] = float32(res.Smoothed)
			if res.Glitched {
				glitched = true
			}
		}
	}
	return out, glitched
}
