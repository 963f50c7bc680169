package dd

// Complex is a complex number whose real and imaginary parts are each
// carried in double-double precision — the DD-tier analogue of the
// orbit's BigFixed complex pair (SPEC_FULL.md §4.2).
type Complex struct {
	Re, Im DD
}

// FromComplex128 lifts a pair of float64s into a DD complex.
func FromComplex128(re, im float64) Complex {
	return Complex{Re: FromFloat64(re), Im: FromFloat64(im)}
}

// Add returns a+b.
func (a Complex) Add(b Complex) Complex {
	return Complex{Re: Add(a.Re, b.Re), Im: Add(a.Im, b.Im)}
}

// Sub returns a-b.
func (a Complex) Sub(b Complex) Complex {
	return Complex{Re: Sub(a.Re, b.Re), Im: Sub(a.Im, b.Im)}
}

// Mul returns a*b using the standard complex product formula, each term
// computed in double-double precision.
func (a Complex) Mul(b Complex) Complex {
	re := Sub(Mul(a.Re, b.Re), Mul(a.Im, b.Im))
	im := Add(Mul(a.Re, b.Im), Mul(a.Im, b.Re))
	return Complex{Re: re, Im: im}
}

// Sqr returns a*a.
func (a Complex) Sqr() Complex {
	re := Sub(Sqr(a.Re), Sqr(a.Im))
	im := Mul(FromFloat64(2), Mul(a.Re, a.Im))
	return Complex{Re: re, Im: im}
}

// Scale returns a*s for a real scalar s.
func (a Complex) Scale(s DD) Complex {
	return Complex{Re: Mul(a.Re, s), Im: Mul(a.Im, s)}
}

// NormSq returns |a|² = re²+im² to double-double precision. The caller
// typically only needs Float64() of the result for an escape compare.
func (a Complex) NormSq() DD {
	return Add(Sqr(a.Re), Sqr(a.Im))
}
