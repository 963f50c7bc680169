package coordinator

import (
	"testing"

	"github.com/deepzoom/mandelcore/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.TileSize = 16
	return cfg
}

func TestSetViewportHomeViewSettles(t *testing.T) {
	e := New(testConfig(), nil)
	err := e.SetViewport("-0.5", "0", -0.5, 0, 2.5, 256, 64, 64)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, e.State())

	frame := e.GetFrame()
	assert.Equal(t, 64, frame.Width)
	assert.Equal(t, 64, frame.Height)
	assert.Len(t, frame.Pixels, 64*64)
}

func TestSetViewportInvalidScaleErrors(t *testing.T) {
	e := New(testConfig(), nil)
	err := e.SetViewport("-0.5", "0", -0.5, 0, 0, 256, 64, 64)
	assert.Error(t, err)
}

func TestSetViewportSecondCallWithNoMutationStaysSettled(t *testing.T) {
	e := New(testConfig(), nil)
	require.NoError(t, e.SetViewport("-0.5", "0", -0.5, 0, 2.5, 256, 64, 64))
	require.NoError(t, e.SetViewport("-0.5", "0", -0.5, 0, 2.5, 256, 64, 64))
	assert.Equal(t, StateSettled, e.State())
}

func TestGetStatsReflectsTileCounts(t *testing.T) {
	e := New(testConfig(), nil)
	require.NoError(t, e.SetViewport("-0.5", "0", -0.5, 0, 2.5, 256, 64, 64))
	s := e.GetStats()
	assert.Greater(t, s.TileCounts["complete"], int64(0))
}

func TestSetViewportUploadsCompletedTilesToL1(t *testing.T) {
	e := New(testConfig(), nil)
	require.NoError(t, e.SetViewport("-0.5", "0", -0.5, 0, 2.5, 256, 64, 64))
	assert.Greater(t, e.l1.Len(), 0)
}

func TestSetViewportDeepZoomEnsuresOrbitBeforeDispatch(t *testing.T) {
	e := New(testConfig(), nil)
	err := e.SetViewport("-1.25066", "0.02012", -1.25066, 0.02012, 1e-12, 512, 32, 32)
	require.NoError(t, err)
	assert.NotNil(t, e.pipe.Orbit())
}
