package tilegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileBoundsOriginOffset(t *testing.T) {
	b := TileBounds(0, 0, 0)
	assert.InDelta(t, 1.25, b.CenterRe, 1e-9)
	assert.InDelta(t, 2.0, b.CenterIm, 1e-9)
	assert.InDelta(t, 4.0, b.Side, 1e-9)
}

func TestVisibleSetCoversHomeView(t *testing.T) {
	// Home view from spec scenario 1: cx=-0.5, cy=0, scale=2.5.
	tiles := VisibleSet(0, -0.5, 0, 2.0, 1.5, 256)
	assert.NotEmpty(t, tiles)
	for _, tl := range tiles {
		assert.Equal(t, 0, tl.Level)
		assert.Equal(t, 256, tl.MaxIter)
	}
}

func TestLevelForTileSizeIncreasesAsScaleShrinks(t *testing.T) {
	l1 := LevelForTileSize(2.5, 600, 256)
	l2 := LevelForTileSize(0.05, 600, 256)
	assert.GreaterOrEqual(t, l2, l1)
}

func TestSortByHilbertIsStableOrdering(t *testing.T) {
	tiles := []Identity{
		{Level: 3, X: 0, Y: 0, MaxIter: 256},
		{Level: 3, X: 5, Y: 5, MaxIter: 256},
		{Level: 3, X: 1, Y: 0, MaxIter: 256},
		{Level: 3, X: -2, Y: 3, MaxIter: 256},
	}
	SortByHilbert(tiles)
	assert.Len(t, tiles, 4)
	// Re-sorting an already-sorted slice must be a no-op.
	before := append([]Identity(nil), tiles...)
	SortByHilbert(tiles)
	assert.Equal(t, before, tiles)
}
