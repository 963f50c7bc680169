package bigfixed

import "math"

// approxTop converts only the top two limbs of x to a float64 magnitude —
// enough bits for an escape comparison, far cheaper than ToFloat64's full
// limb sweep. Escaped below is its only caller.
func approxTop(x *BigFixed) float64 {
	if x.sign == 0 {
		return 0
	}
	n := len(x.limbs)
	scale := limbBits*n - intBits
	top := float64(x.limbs[n-1]) * math.Ldexp(1, limbBits*(n-1)-scale)
	if n >= 2 {
		top += float64(x.limbs[n-2]) * math.Ldexp(1, limbBits*(n-2)-scale)
	}
	return top * float64(x.sign)
}

// Escaped reports whether re+i*im has left a disc of the given radius
// squared, using only the top limbs of each operand for speed. The 4-bit
// integer field caps any BigFixed magnitude below 16, so thresholdSquared
// should stay within that ceiling — callers pick a threshold comfortably
// above the classic radius-2 bailout (spec §4.1's "fast check approximating
// |re|²+|im|² via the top limbs").
func Escaped(re, im *BigFixed, thresholdSquared float64) bool {
	r := approxTop(re)
	i := approxTop(im)
	return r*r+i*i > thresholdSquared
}
