package bigfixed

// mulMagnitude computes the full 2*n-limb schoolbook product of two n-limb
// magnitudes. O(n²); each row's partial products are accumulated with an
// explicit carry chain so no uint64 accumulator can ever overflow.
func mulMagnitude(a, b []uint32) []uint32 {
	n := len(a)
	// One spare limb of headroom so a trailing carry chain can never index
	// past the end of the slice; callers only look at the low 2n limbs.
	result := make([]uint32, 2*n+1)
	for i := 0; i < n; i++ {
		if a[i] == 0 {
			continue
		}
		ai := uint64(a[i])
		var carry uint64
		for j := 0; j < n; j++ {
			idx := i + j
			prod := ai*uint64(b[j]) + uint64(result[idx]) + carry
			result[idx] = uint32(prod)
			carry = prod >> limbBits
		}
		idx := i + n
		for carry != 0 {
			sum := uint64(result[idx]) + carry
			result[idx] = uint32(sum)
			carry = sum >> limbBits
			idx++
		}
	}
	return result[:2*n]
}

// addAt adds a 64-bit value at limb position pos, propagating carry as far
// as needed. Used by sqrMagnitude to add each off-diagonal partial product
// twice (once for (i,j), once for (j,i)) without the overflow risk of
// doubling a uint64 product before adding it.
func addAt(result []uint32, pos int, val uint64) {
	lo := uint32(val)
	hi := uint32(val >> limbBits)

	sum := uint64(result[pos]) + uint64(lo)
	result[pos] = uint32(sum)
	carry := sum >> limbBits

	carry += uint64(result[pos+1]) + uint64(hi)
	result[pos+1] = uint32(carry)
	carry >>= limbBits

	idx := pos + 2
	for carry != 0 {
		sum := uint64(result[idx]) + carry
		result[idx] = uint32(sum)
		carry = sum >> limbBits
		idx++
	}
}

// sqrMagnitude computes the full 2*n-limb square of an n-limb magnitude,
// exploiting symmetry: each diagonal term a[i]² is added once, each
// off-diagonal term a[i]*a[j] (i<j) is added twice instead of being
// multiplied by two (which could overflow a uint64 product).
func sqrMagnitude(a []uint32) []uint32 {
	n := len(a)
	result := make([]uint32, 2*n+2)
	for i := 0; i < n; i++ {
		if a[i] == 0 {
			continue
		}
		ai := uint64(a[i])
		addAt(result, 2*i, ai*ai)
		for j := i + 1; j < n; j++ {
			if a[j] == 0 {
				continue
			}
			prod := ai * uint64(a[j])
			idx := i + j
			addAt(result, idx, prod)
			addAt(result, idx, prod)
		}
	}
	return result[:2*n]
}

// shiftRightLimbs returns floor(value(limbs) / 2^bits), same length as limbs.
func shiftRightLimbs(limbs []uint32, bits int) []uint32 {
	n := len(limbs)
	limbShift := bits / limbBits
	bitShift := uint(bits % limbBits)
	result := make([]uint32, n)
	for i := 0; i < n; i++ {
		srcIdx := i + limbShift
		var lo, hi uint32
		if srcIdx < n {
			lo = limbs[srcIdx]
		}
		if srcIdx+1 < n {
			hi = limbs[srcIdx+1]
		}
		if bitShift == 0 {
			result[i] = lo
		} else {
			result[i] = (lo >> bitShift) | (hi << (limbBits - bitShift))
		}
	}
	return result
}

// reassemble takes a 2n-limb raw product and realigns it back to the
// n-limb Q(4, 32n-4) format by shifting right (32n-4) bits, matching the
// renormalization spec §3 and §4.1 describe. Values whose true integer part
// would exceed 4 bits are silently truncated — this is the documented
// "fails silently on overflow" contract; callers keep operands in range by
// testing escape before every multiply.
func reassemble(product []uint32, n int) []uint32 {
	shifted := shiftRightLimbs(product, limbBits*n-intBits)
	return shifted[:n]
}

// Mul computes dst = a * b and returns dst.
func Mul(dst, a, b *BigFixed) *BigFixed {
	mustSameSize(dst, a)
	mustSameSize(dst, b)
	if a.sign == 0 || b.sign == 0 {
		dst.SetZero()
		return dst
	}
	product := mulMagnitude(a.limbs, b.limbs)
	copy(dst.limbs, reassemble(product, len(dst.limbs)))
	dst.sign = a.sign * b.sign
	dst.normalizeSign()
	return dst
}

// Sqr computes dst = a*a, using the symmetry-exploiting square path, and
// returns dst. Sqr(a) is bit-exact equal to Mul(a, a) for all representable
// a (spec §8 testable property).
func Sqr(dst, a *BigFixed) *BigFixed {
	mustSameSize(dst, a)
	if a.sign == 0 {
		dst.SetZero()
		return dst
	}
	product := sqrMagnitude(a.limbs)
	copy(dst.limbs, reassemble(product, len(dst.limbs)))
	dst.sign = 1
	dst.normalizeSign()
	return dst
}
