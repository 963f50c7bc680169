package bigfixed

// addMagnitude computes dst = |a| + |b| with ripple carry in little-endian
// limb order. The final carry-out is discarded — the caller is
// responsible for keeping values in Mandelbrot range so the integer field
// never truly overflows; see spec §4.1 contracts.
func addMagnitude(dst, a, b *BigFixed) {
	var carry uint64
	for i := range dst.limbs {
		sum := uint64(a.limbs[i]) + uint64(b.limbs[i]) + carry
		dst.limbs[i] = uint32(sum)
		carry = sum >> limbBits
	}
}

// subMagnitude computes dst = |a| - |b| assuming |a| >= |b|, via ripple
// borrow in little-endian limb order.
func subMagnitude(dst, a, b *BigFixed) {
	var borrow uint64
	for i := range dst.limbs {
		ai := uint64(a.limbs[i])
		bi := uint64(b.limbs[i]) + borrow
		if ai < bi {
			dst.limbs[i] = uint32(ai + (1 << limbBits) - bi)
			borrow = 1
		} else {
			dst.limbs[i] = uint32(ai - bi)
			borrow = 0
		}
	}
}

// Add computes dst = a + b and returns dst. a, b, dst must share a limb count.
func Add(dst, a, b *BigFixed) *BigFixed {
	mustSameSize(dst, a)
	mustSameSize(dst, b)

	switch {
	case a.sign == 0:
		dst.Set(b)
	case b.sign == 0:
		dst.Set(a)
	case a.sign == b.sign:
		addMagnitude(dst, a, b)
		dst.sign = a.sign
		dst.normalizeSign()
	default:
		// Opposite signs: subtract the smaller magnitude from the larger,
		// taking the sign of the larger operand.
		switch compareMagnitude(a, b) {
		case 0:
			dst.SetZero()
		case 1:
			subMagnitude(dst, a, b)
			dst.sign = a.sign
			dst.normalizeSign()
		default:
			subMagnitude(dst, b, a)
			dst.sign = b.sign
			dst.normalizeSign()
		}
	}
	return dst
}

// Sub computes dst = a - b and returns dst.
func Sub(dst, a, b *BigFixed) *BigFixed {
	mustSameSize(dst, a)
	mustSameSize(dst, b)
	negB := b.Clone()
	if negB.sign != 0 {
		negB.sign = -negB.sign
	}
	return Add(dst, a, negB)
}
