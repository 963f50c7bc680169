package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/deepzoom/mandelcore/internal/tilegrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewForFindsRenderedAncestor(t *testing.T) {
	p := newTestPipeline()
	tier := p.SelectTier(2.5, time.Now())

	// Render the wide home view at level 1, populating the L2 cache.
	_, err := p.RequestVisible(context.Background(), 1, -0.5, 0, 2, 1.5, 256, nil, tier, "-0.5", "0")
	require.NoError(t, err)

	// A not-yet-rendered descendant tile three levels deeper.
	child := tilegrid.Identity{Level: 4, X: 0, Y: 0, MaxIter: 256}
	pv, ok := p.PreviewFor(child)
	require.True(t, ok)
	assert.LessOrEqual(t, pv.LevelsUp, maxPreviewLevels)
	assert.Equal(t, 1, pv.AncestorTile.Level)
}

func TestPreviewForMissingWhenNoAncestorRendered(t *testing.T) {
	p := newTestPipeline()
	_, ok := p.PreviewFor(tilegrid.Identity{Level: 10, X: 500, Y: 500, MaxIter: 256})
	assert.False(t, ok)
}

func TestStretchProducesTargetSizedBuffer(t *testing.T) {
	p := newTestPipeline()
	tier := p.SelectTier(2.5, time.Now())
	_, err := p.RequestVisible(context.Background(), 1, -0.5, 0, 2, 1.5, 256, nil, tier, "-0.5", "0")
	require.NoError(t, err)

	child := tilegrid.Identity{Level: 3, X: 0, Y: 0, MaxIter: 256}
	pv, ok := p.PreviewFor(child)
	require.True(t, ok)

	data := pv.Stretch(child, 16)
	assert.Len(t, data, 16*16)
}
