// Package orbit computes and holds the engine's single shared high-precision
// reference orbit: the sequence Z_n = Z_{n-1}^2 + c evaluated at BigFixed
// precision, snapshotted into f64 arrays for cheap consumption by every
// perturbation tile worker (SPEC_FULL.md §4.3).
//
// Grounded on internal/cog.Reader from the teacher: a single expensive,
// read-many, immutable-after-build resource shared across concurrent
// workers — replaced wholesale, never mutated in place.
package orbit

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/internal/bigfixed"
)

// escapeRadiusSq is the generous bailout radius used while computing the
// reference orbit (spec §3: "choose large radius, ≈ 10¹⁶, so glitch
// detection later works").
const escapeRadiusSq = 1e16

// NoEscape marks an orbit that never left the escape radius within max_iter.
const NoEscape = -1

// Orbit is a finite, restartable sequence of reference-orbit samples,
// materialized once as two contiguous f64 arrays. Read-only after Compute
// returns; safe for concurrent readers across tile workers.
type Orbit struct {
	CenterReStr string
	CenterImStr string
	CenterRe    float64 // f64 snapshot of the center, for staleness comparisons
	CenterIm    float64
	Scale       float64 // viewport scale this orbit was built for

	Re         []float64 // orbit_re[0..L], orbit_re[0] == 0
	Im         []float64 // orbit_im[0..L]
	NormSq     []float64 // Zn.re^2 + Zn.im^2, parallel to Re/Im
	L          int       // actual iterations computed (len(Re)-1)
	EscapeIter int       // NoEscape, or the index at which |Z|^2 first exceeded the radius
}

// Compute builds a reference orbit at the given center, iterating z <- z^2+c
// at BigFixed precision with `limbs` limbs of precision, up to maxIter steps.
func Compute(centerReStr, centerImStr string, scale float64, maxIter, limbs int) (*Orbit, error) {
	cRe, err := bigfixed.FromString(limbs, centerReStr)
	if err != nil {
		return nil, fmt.Errorf("orbit: parse center real %q: %w", centerReStr, err)
	}
	cIm, err := bigfixed.FromString(limbs, centerImStr)
	if err != nil {
		return nil, fmt.Errorf("orbit: parse center imag %q: %w", centerImStr, err)
	}

	zRe := bigfixed.New(limbs)
	zIm := bigfixed.New(limbs)

	reBuf := make([]float64, 0, maxIter+1)
	imBuf := make([]float64, 0, maxIter+1)
	normBuf := make([]float64, 0, maxIter+1)
	reBuf = append(reBuf, 0)
	imBuf = append(imBuf, 0)
	normBuf = append(normBuf, 0)

	zSqRe := bigfixed.New(limbs)
	zSqIm := bigfixed.New(limbs)
	crossTerm := bigfixed.New(limbs)
	tmp := bigfixed.New(limbs)
	nextRe := bigfixed.New(limbs)
	nextIm := bigfixed.New(limbs)

	escapeIter := NoEscape
	i := 0
	for ; i < maxIter; i++ {
		// z^2 = (re^2 - im^2) + 2*re*im*i
		bigfixed.Sqr(zSqRe, zRe)
		bigfixed.Sqr(zSqIm, zIm)
		bigfixed.Sub(tmp, zSqRe, zSqIm)
		bigfixed.Add(nextRe, tmp, cRe)

		bigfixed.Mul(crossTerm, zRe, zIm)
		bigfixed.Add(tmp, crossTerm, crossTerm)
		bigfixed.Add(nextIm, tmp, cIm)

		zRe.Set(nextRe)
		zIm.Set(nextIm)

		re := bigfixed.ToFloat64(zRe)
		im := bigfixed.ToFloat64(zIm)
		normSq := re*re + im*im

		reBuf = append(reBuf, re)
		imBuf = append(imBuf, im)
		normBuf = append(normBuf, normSq)

		if normSq > escapeRadiusSq {
			escapeIter = i + 1
			i++
			break
		}
	}

	o := &Orbit{
		CenterReStr: centerReStr,
		CenterImStr: centerImStr,
		CenterRe:    bigfixed.ToFloat64(cRe),
		CenterIm:    bigfixed.ToFloat64(cIm),
		Scale:       scale,
		Re:          reBuf,
		Im:          imBuf,
		NormSq:      normBuf,
		L:           i,
		EscapeIter:  escapeIter,
	}

	logrus.WithFields(logrus.Fields{
		"center_re": centerReStr,
		"center_im": centerImStr,
		"limbs":     limbs,
		"iters":     o.L,
		"escaped":   escapeIter != NoEscape,
	}).Debug("orbit: computed reference orbit")

	return o, nil
}

// LimbsForScale chooses the BigFixed precision needed at a given viewport
// scale (spec §4.3): clamp(4, 64, ceil(-log10(scale)/9.6) + 2).
func LimbsForScale(scale float64) int {
	if scale <= 0 {
		return bigfixed.MinLimbs
	}
	v := -math.Log10(scale)
	if v < 0 {
		v = 0
	}
	n := int(math.Ceil(v/9.6)) + 2
	if n < 4 {
		n = 4
	}
	if n > 64 {
		n = 64
	}
	return n
}
