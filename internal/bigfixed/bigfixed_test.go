package bigfixed

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, n int, s string) *BigFixed {
	t.Helper()
	x, err := FromString(n, s)
	require.NoError(t, err)
	return x
}

func TestFromStringRoundTripsThroughFloat64(t *testing.T) {
	cases := []string{"0", "1", "-1", "0.5", "-0.5", "2.25", "-3.75", "0.1", "-2.0"}
	for _, c := range cases {
		x := mustParse(t, 8, c)
		got := ToFloat64(x)
		want, err := strconv.ParseFloat(c, 64)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-9, "case %q", c)
	}
}

func TestAddSubInverse(t *testing.T) {
	n := 6
	a := mustParse(t, n, "1.5")
	b := mustParse(t, n, "0.25")
	sum := New(n)
	Add(sum, a, b)
	assert.InDelta(t, 1.75, ToFloat64(sum), 1e-9)

	diff := New(n)
	Sub(diff, sum, b)
	assert.InDelta(t, 1.5, ToFloat64(diff), 1e-9)
}

func TestAddCommutativeAndAssociativeWithinOneULP(t *testing.T) {
	n := 8
	a := mustParse(t, n, "0.1")
	b := mustParse(t, n, "0.2")
	c := mustParse(t, n, "0.3")

	ab := New(n)
	Add(ab, a, b)
	abc1 := New(n)
	Add(abc1, ab, c)

	bc := New(n)
	Add(bc, b, c)
	abc2 := New(n)
	Add(abc2, a, bc)

	assert.InDelta(t, ToFloat64(abc1), ToFloat64(abc2), 1e-18)
}

func TestSqrMatchesMulBitExact(t *testing.T) {
	n := 6
	for _, s := range []string{"0.5", "-1.25", "1.999", "-0.001", "3.0"} {
		a := mustParse(t, n, s)
		viaSqr := New(n)
		Sqr(viaSqr, a)
		viaMul := New(n)
		Mul(viaMul, a, a)
		assert.Equal(t, viaMul.limbs, viaSqr.limbs, "case %q", s)
		assert.Equal(t, viaMul.sign, viaSqr.sign, "case %q", s)
	}
}

func TestMulZero(t *testing.T) {
	n := 4
	zero := New(n)
	a := mustParse(t, n, "1.5")
	out := New(n)
	Mul(out, a, zero)
	assert.True(t, out.IsZero())
}

func TestEscapedThreshold(t *testing.T) {
	n := 4
	re := mustParse(t, n, "2.0")
	im := mustParse(t, n, "2.0")
	assert.True(t, Escaped(re, im, 4.0))

	small := mustParse(t, n, "0.1")
	assert.False(t, Escaped(small, small, 4.0))
}

func TestFromFloat64Lossy(t *testing.T) {
	n := 32
	x := FromFloat64(n, math.Pi/4)
	assert.InDelta(t, math.Pi/4, ToFloat64(x), 1e-15)

	neg := FromFloat64(n, -1.5)
	assert.InDelta(t, -1.5, ToFloat64(neg), 1e-15)

	zero := FromFloat64(n, 0)
	assert.True(t, zero.IsZero())
}

func TestCloneSetIndependent(t *testing.T) {
	n := 4
	a := mustParse(t, n, "1.0")
	b := a.Clone()
	b.limbs[0] = 0xdeadbeef
	assert.NotEqual(t, a.limbs[0], b.limbs[0])
}

func TestMustSameSizePanics(t *testing.T) {
	a := New(4)
	b := New(8)
	assert.Panics(t, func() {
		Add(New(4), a, b)
	})
}
