package pipeline

import (
	"github.com/deepzoom/mandelcore/internal/cache"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
)

// maxPreviewLevels bounds how far PreviewFor climbs the quadtree looking for
// a complete ancestor (spec §4.0 supplement: "at most 4 levels").
const maxPreviewLevels = 4

// Preview is the nearest complete ancestor of a not-yet-rendered tile,
// returned by PreviewFor for the Compositor to stretch-blit as a
// placeholder (spec §4.0 supplement).
type Preview struct {
	Entry        *cache.Entry
	AncestorTile tilegrid.Identity
	LevelsUp     int
}

// PreviewFor walks up the quadtree from tile (at most maxPreviewLevels
// levels) looking for the nearest cache-complete ancestor. It does not
// change tile's own status — the Coordinator still reports it
// pending/rendering — it only gives the Compositor something better than
// blank to draw while the real tile renders.
func (p *Pipeline) PreviewFor(tile tilegrid.Identity) (*Preview, bool) {
	x, y := tile.X, tile.Y
	for levelsUp := 1; levelsUp <= maxPreviewLevels && tile.Level-levelsUp >= 0; levelsUp++ {
		x >>= 1 // arithmetic shift: floor division by 2, correct for negative tile coords
		y >>= 1
		level := tile.Level - levelsUp
		key := cache.Key{Level: level, X: x, Y: y, MaxIter: tile.MaxIter}
		if hit := p.l2.Get(key); hit != nil {
			return &Preview{
				Entry:        hit,
				AncestorTile: tilegrid.Identity{Level: level, X: x, Y: y, MaxIter: tile.MaxIter},
				LevelsUp:     levelsUp,
			}, true
		}
	}
	return nil, false
}

// Stretch nearest-neighbor-samples the preview's ancestor entry, cropped to
// the quadrant tile occupies within it, up to targetSize×targetSize —
// grounded on internal/tile/downsample.go's quadrant-placement math, run in
// reverse (upsampling one quadrant instead of downsampling four).
func (pv *Preview) Stretch(tile tilegrid.Identity, targetSize int) []float32 {
	factor := 1 << pv.LevelsUp
	offsetX := tile.X - (pv.AncestorTile.X << pv.LevelsUp)
	offsetY := tile.Y - (pv.AncestorTile.Y << pv.LevelsUp)

	srcSize := pv.Entry.WidthPx
	out := make([]float32, targetSize*targetSize)
	if srcSize == 0 {
		return out
	}

	for ty := 0; ty < targetSize; ty++ {
		srcYf := (float64(offsetY) + float64(ty)/float64(targetSize)) / float64(factor) * float64(srcSize)
		sy := clampIndex(int(srcYf), srcSize)
		for tx := 0; tx < targetSize; tx++ {
			srcXf := (float64(offsetX) + float64(tx)/float64(targetSize)) / float64(factor) * float64(srcSize)
			sx := clampIndex(int(srcXf), srcSize)
			out[ty*targetSize+tx] = pv.Entry.Data[sy*srcSize+sx]
		}
	}
	return out
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
