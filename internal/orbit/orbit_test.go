package orbit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeZeroNeverEscapes(t *testing.T) {
	o, err := Compute("0", "0", 1.0, 200, 4)
	require.NoError(t, err)
	assert.Equal(t, NoEscape, o.EscapeIter)
	assert.Equal(t, 200, o.L)
	assert.Equal(t, 0.0, o.Re[0])
	assert.Equal(t, 0.0, o.Im[0])
}

func TestComputeTwoEscapesQuickly(t *testing.T) {
	o, err := Compute("2", "0", 1.0, 200, 4)
	require.NoError(t, err)
	require.NotEqual(t, NoEscape, o.EscapeIter)
	assert.LessOrEqual(t, o.EscapeIter, 3)
}

func TestComputeNegHalfStaysBounded(t *testing.T) {
	o, err := Compute("-0.5", "0", 1.0, 1000, 4)
	require.NoError(t, err)
	assert.Equal(t, NoEscape, o.EscapeIter)
}

func TestOrbitArraysParallelLength(t *testing.T) {
	o, err := Compute("-0.75", "0.1", 0.05, 100, 6)
	require.NoError(t, err)
	assert.Equal(t, len(o.Re), len(o.Im))
	assert.Equal(t, len(o.Re), len(o.NormSq))
	assert.Equal(t, o.L+1, len(o.Re))
}

func TestLimbsForScaleClampsToRange(t *testing.T) {
	assert.Equal(t, 4, LimbsForScale(1.0))
	assert.GreaterOrEqual(t, LimbsForScale(1e-200), 4)
	assert.LessOrEqual(t, LimbsForScale(1e-2000), 64)
}

func TestNeedsRecomputeOnLargeDrift(t *testing.T) {
	o, err := Compute("-0.5", "0", 1.0, 10, 4)
	require.NoError(t, err)
	assert.True(t, o.NeedsRecompute("-0.9", "0", -0.9, 0, 1.0))
	assert.False(t, o.NeedsRecompute("-0.5", "0", -0.5, 0, 1.0))
}

func TestNeedsRecomputeOnScaleJump(t *testing.T) {
	o, err := Compute("-0.5", "0", 1.0, 10, 4)
	require.NoError(t, err)
	assert.True(t, o.NeedsRecompute("-0.5", "0", -0.5, 0, 3.0))
	assert.True(t, o.NeedsRecompute("-0.5", "0", -0.5, 0, 0.1))
}

func TestNeedsRecomputeNilOrbit(t *testing.T) {
	var o *Orbit
	assert.True(t, o.NeedsRecompute("0", "0", 0, 0, 1.0))
}
