package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/deepzoom/mandelcore/internal/cache/l2"
	"github.com/deepzoom/mandelcore/internal/config"
	"github.com/deepzoom/mandelcore/internal/precision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline() *Pipeline {
	cfg := config.Default()
	cfg.TileSize = 16 // small tiles keep tests fast
	return New(cfg, l2.New(64), nil)
}

func TestRequestVisibleHomeViewAllComplete(t *testing.T) {
	p := newTestPipeline()
	tier := p.SelectTier(2.5, time.Now())
	results, err := p.RequestVisible(context.Background(), 1, -0.5, 0, 2, 1.5, 256, nil, tier, "-0.5", "0")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, StatusComplete, r.Status)
		assert.Len(t, r.Data, 16*16)
	}
}

func TestRequestVisibleSecondCallHitsCache(t *testing.T) {
	p := newTestPipeline()
	tier := p.SelectTier(2.5, time.Now())
	_, err := p.RequestVisible(context.Background(), 1, -0.5, 0, 2, 1.5, 256, nil, tier, "-0.5", "0")
	require.NoError(t, err)
	before := p.l2.Len()
	require.Greater(t, before, 0)

	results, err := p.RequestVisible(context.Background(), 1, -0.5, 0, 2, 1.5, 256, nil, tier, "-0.5", "0")
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusComplete, r.Status)
	}
	assert.Equal(t, before, p.l2.Len())
}

func TestRequestVisiblePerturbationRequiresOrbit(t *testing.T) {
	p := newTestPipeline()
	_, err := p.RequestVisible(context.Background(), 20, -1.25066, 0.02012, 1e-12, 1e-12, 256, nil, precision.TierPerturbation, "-1.25066", "0.02012")
	assert.Error(t, err)
}

func TestEnsureOrbitSkipsRecomputeWhenFresh(t *testing.T) {
	p := newTestPipeline()
	require.NoError(t, p.EnsureOrbit("-1.25066", "0.02012", -1.25066, 0.02012, 1e-9, 512))
	first := p.Orbit()
	require.NotNil(t, first)

	require.NoError(t, p.EnsureOrbit("-1.25066", "0.02012", -1.25066, 0.02012, 1e-9, 512))
	assert.Same(t, first, p.Orbit())
}

func TestEnsureOrbitRecomputesOnDrift(t *testing.T) {
	p := newTestPipeline()
	require.NoError(t, p.EnsureOrbit("-1.25066", "0.02012", -1.25066, 0.02012, 1e-9, 512))
	first := p.Orbit()

	require.NoError(t, p.EnsureOrbit("-1.1", "0.3", -1.1, 0.3, 1e-9, 512))
	assert.NotSame(t, first, p.Orbit())
}

func TestRequestVisibleUsesOrbitOncePresent(t *testing.T) {
	p := newTestPipeline()
	require.NoError(t, p.EnsureOrbit("-1.25066", "0.02012", -1.25066, 0.02012, 1e-12, 512))

	tier := p.SelectTier(1e-12, time.Now())
	results, err := p.RequestVisible(context.Background(), 20, -1.25066, 0.02012, 1e-12, 1e-12, 512, nil, tier, "-1.25066", "0.02012")
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, StatusComplete, r.Status)
	}
}
