package perturb

import (
	"testing"

	"github.com/deepzoom/mandelcore/internal/orbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kernelFor(t *testing.T, o *orbit.Orbit, maxIter int) Kernel {
	t.Helper()
	return Kernel{
		OrbitRe:         o.Re,
		OrbitIm:         o.Im,
		OrbitNormSq:     o.NormSq,
		MaxIter:         maxIter,
		EscapeRadiusSq:  4.0,
		GlitchThreshold: GlitchThreshold,
	}
}

func TestEvalAtReferenceCenterMatchesDirectOrbit(t *testing.T) {
	o, err := orbit.Compute("-0.5", "0", 1.0, 500, 8)
	require.NoError(t, err)
	k := kernelFor(t, o, 500)

	// delta = 0 means "evaluate the reference point itself": must stay interior.
	res := k.Eval(0, 0)
	assert.Equal(t, Interior, res.Smoothed)
	assert.False(t, res.Glitched)
}

func TestEvalNearbyEscapingPixel(t *testing.T) {
	// Reference at c=2 (escapes almost immediately); a pixel offset of 0
	// reproduces the same fast escape.
	o, err := orbit.Compute("2", "0", 1.0, 100, 8)
	require.NoError(t, err)
	k := kernelFor(t, o, 100)

	res := k.Eval(0, 0)
	assert.False(t, res.Glitched)
	assert.Greater(t, res.Smoothed, 0.0)
}

func TestEvalDeepInteriorDeltaStaysBounded(t *testing.T) {
	o, err := orbit.Compute("-0.5", "0", 1.0, 300, 8)
	require.NoError(t, err)
	k := kernelFor(t, o, 300)

	// A tiny delta near the bounded reference center should also stay interior.
	res := k.Eval(1e-9, 1e-9)
	assert.Equal(t, Interior, res.Smoothed)
}
