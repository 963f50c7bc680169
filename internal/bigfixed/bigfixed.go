// Package bigfixed implements the engine's arbitrary-precision signed
// fixed-point number: 4 integer bits followed by N×32 fractional bits,
// stored as N little-endian uint32 limbs. It is sized for the Mandelbrot
// range (|c| < 4) and is not a general-purpose big-number type — see
// SPEC_FULL.md §1 Non-goals.
package bigfixed

import "fmt"

// MinLimbs and MaxLimbs bound the supported limb counts (spec §3: N ∈ [4,128]).
const (
	MinLimbs = 4
	MaxLimbs = 128

	// limbBits is the bit width of a single limb.
	limbBits = 32

	// intBits is the width of the integer field packed into the top limb.
	intBits = 4
)

// BigFixed is a signed fixed-point number: sign × U / 2^(32*N - 4), where U
// is the unsigned magnitude formed by treating limbs as a little-endian
// 32*N-bit integer (limbs[0] is least significant).
type BigFixed struct {
	sign  int8 // -1, 0, or +1
	limbs []uint32
}

// New allocates a canonical zero with n limbs. n is clamped to [MinLimbs,MaxLimbs].
func New(n int) *BigFixed {
	if n < MinLimbs {
		n = MinLimbs
	}
	if n > MaxLimbs {
		n = MaxLimbs
	}
	return &BigFixed{limbs: make([]uint32, n)}
}

// NLimbs returns the limb count (precision) of x.
func (x *BigFixed) NLimbs() int { return len(x.limbs) }

// Sign returns -1, 0, or +1.
func (x *BigFixed) Sign() int { return int(x.sign) }

// IsZero reports whether x is the canonical zero.
func (x *BigFixed) IsZero() bool { return x.sign == 0 }

// Clone returns a deep copy of x.
func (x *BigFixed) Clone() *BigFixed {
	y := &BigFixed{sign: x.sign, limbs: make([]uint32, len(x.limbs))}
	copy(y.limbs, x.limbs)
	return y
}

// Set copies src into dst. Panics if limb counts differ.
func (dst *BigFixed) Set(src *BigFixed) *BigFixed {
	mustSameSize(dst, src)
	dst.sign = src.sign
	copy(dst.limbs, src.limbs)
	return dst
}

// SetZero resets x to the canonical zero, preserving its precision.
func (x *BigFixed) SetZero() *BigFixed {
	x.sign = 0
	for i := range x.limbs {
		x.limbs[i] = 0
	}
	return x
}

// normalizeSign clears the sign to 0 if the magnitude is all-zero, per the
// canonical-zero invariant.
func (x *BigFixed) normalizeSign() {
	for _, l := range x.limbs {
		if l != 0 {
			return
		}
	}
	x.sign = 0
}

func mustSameSize(a, b *BigFixed) {
	if len(a.limbs) != len(b.limbs) {
		panic(fmt.Sprintf("bigfixed: mismatched limb counts %d vs %d", len(a.limbs), len(b.limbs)))
	}
}

// compareMagnitude compares |a| and |b|, ignoring sign. Returns -1, 0, +1.
func compareMagnitude(a, b *BigFixed) int {
	for i := len(a.limbs) - 1; i >= 0; i-- {
		if a.limbs[i] != b.limbs[i] {
			if a.limbs[i] < b.limbs[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// String renders x for debugging (not a round-trippable decimal format —
// use FromString/ToFloat64 for that).
func (x *BigFixed) String() string {
	if x.sign == 0 {
		return "0"
	}
	sign := "+"
	if x.sign < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%v (n=%d)", sign, x.limbs, len(x.limbs))
}
