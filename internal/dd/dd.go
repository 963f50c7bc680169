// Package dd implements double-double arithmetic: each value is an
// unevaluated sum hi+lo of two float64s carrying roughly twice the
// mantissa of a single double. It backs the engine's DD precision tier,
// used once plain float64 iteration is too coarse but the zoom is not yet
// deep enough for the perturbation tier (SPEC_FULL.md §4.2).
//
// The error-free transforms (two-sum, two-product) and the renormalize
// step follow the Joldes/Langlois/Shewchuk double-double papers that the
// "QD"-style libraries in the Go ecosystem are themselves derived from.
package dd

import "math"

// splitter is 2^27+1, the Dekker/Veltkamp split constant for float64's
// 53-bit mantissa (27 = ceil(53/2)).
const splitter = 134217729.0 // 2^27 + 1

// DD is a double-double number: the exact value is hi+lo, with
// |lo| <= 0.5*ulp(hi) once normalized.
type DD struct {
	Hi, Lo float64
}

// Zero is the additive identity.
var Zero = DD{}

// FromFloat64 lifts a single float64 into a DD with zero low part.
func FromFloat64(x float64) DD { return DD{Hi: x} }

// Float64 truncates a DD back to a single float64 (drops the low part).
func (a DD) Float64() float64 { return a.Hi }

// twoSum computes s = fl(a+b) and the exact error e such that a+b = s+e,
// using Knuth's error-free transform. Valid for any a, b.
func twoSum(a, b float64) (s, e float64) {
	s = a + b
	bb := s - a
	e = (a - (s - bb)) + (b - bb)
	return s, e
}

// fastTwoSum is twoSum specialized for the common case |a| >= |b|; cheaper
// but requires that precondition to hold.
func fastTwoSum(a, b float64) (s, e float64) {
	s = a + b
	e = b - (s - a)
	return s, e
}

// twoProduct computes p = fl(a*b) and the exact error e such that
// a*b = p+e, via Dekker's split-and-multiply error-free transform.
func twoProduct(a, b float64) (p, e float64) {
	p = a * b
	ah, al := split(a)
	bh, bl := split(b)
	e = ((ah*bh - p) + ah*bl + al*bh) + al*bl
	return p, e
}

// split breaks a float64 into a high part and low part, each with at most
// 26 significant bits, such that a = hi+lo exactly.
func split(a float64) (hi, lo float64) {
	t := splitter * a
	hi = t - (t - a)
	lo = a - hi
	return hi, lo
}

// renormalize restores the invariant |lo| <= 0.5*ulp(hi) after an
// operation that may have produced a hi/lo pair slightly out of canonical
// form (the fast-two-sum here is valid because |hi| >= |lo| already holds
// for every caller in this package).
func renormalize(hi, lo float64) DD {
	h, l := fastTwoSum(hi, lo)
	return DD{Hi: h, Lo: l}
}

// Add returns a+b to double-double precision.
func Add(a, b DD) DD {
	sh, sl := twoSum(a.Hi, b.Hi)
	th, tl := twoSum(a.Lo, b.Lo)
	sl += th
	sh, sl = fastTwoSum(sh, sl)
	sl += tl
	return renormalize(sh, sl)
}

// Sub returns a-b to double-double precision.
func Sub(a, b DD) DD {
	return Add(a, Neg(b))
}

// Neg returns -a.
func Neg(a DD) DD { return DD{Hi: -a.Hi, Lo: -a.Lo} }

// Mul returns a*b to double-double precision.
func Mul(a, b DD) DD {
	ph, pl := twoProduct(a.Hi, b.Hi)
	pl += a.Hi*b.Lo + a.Lo*b.Hi
	return renormalize(ph, pl)
}

// Sqr returns a*a, algebraically identical to Mul(a,a) but computed
// without redundant cross terms.
func Sqr(a DD) DD {
	ph, pl := twoProduct(a.Hi, a.Hi)
	pl += 2 * a.Hi * a.Lo
	return renormalize(ph, pl)
}

// Div returns a/b to double-double precision via Newton refinement of the
// quotient estimate.
func Div(a, b DD) DD {
	q1 := a.Hi / b.Hi
	r := Sub(a, Mul(b, FromFloat64(q1)))
	q2 := r.Hi / b.Hi
	r = Sub(r, Mul(b, FromFloat64(q2)))
	q3 := r.Hi / b.Hi
	return renormalize(fastTwoSumHi(q1, q2, q3))
}

// fastTwoSumHi folds three quotient corrections into a single canonical
// (hi, lo) pair via two chained fast-two-sums.
func fastTwoSumHi(q1, q2, q3 float64) (float64, float64) {
	h, l := fastTwoSum(q1, q2)
	h, l2 := fastTwoSum(h, q3+l)
	return h, l2
}

// Sqrt returns sqrt(a) to double-double precision for a > 0, via one step
// of Newton refinement on top of the float64 estimate.
func Sqrt(a DD) DD {
	if a.Hi <= 0 {
		return Zero
	}
	x := 1.0 / math.Sqrt(a.Hi)
	ax := DD{Hi: a.Hi * x}
	axErr := Sub(a, Sqr(ax))
	return Add(ax, FromFloat64(axErr.Hi*(0.5*x)))
}

// Compare returns -1, 0, +1 as a is less than, equal to, or greater than b.
func Compare(a, b DD) int {
	switch {
	case a.Hi < b.Hi, a.Hi == b.Hi && a.Lo < b.Lo:
		return -1
	case a.Hi > b.Hi, a.Hi == b.Hi && a.Lo > b.Lo:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether a is exactly zero.
func (a DD) IsZero() bool { return a.Hi == 0 && a.Lo == 0 }

// Abs returns |a|.
func Abs(a DD) DD {
	if a.Hi < 0 || (a.Hi == 0 && a.Lo < 0) {
		return Neg(a)
	}
	return a
}
