package compositor

import (
	"testing"

	"github.com/deepzoom/mandelcore/internal/palette"
	"github.com/deepzoom/mandelcore/internal/perturb"
	"github.com/deepzoom/mandelcore/internal/reproject"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
	"github.com/deepzoom/mandelcore/internal/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewport() viewport.Viewport {
	return viewport.Viewport{
		CenterRe: -0.5,
		CenterIm: 0,
		Scale:    4,
		Width:    8,
		Height:   8,
		MaxIter:  256,
	}
}

func TestCompositeWithoutBaseFillsNeutral(t *testing.T) {
	c := New(palette.Default(), 1)
	frame := c.Composite(testViewport(), nil, nil)
	require.Len(t, frame.Pixels, 8*8)
	for _, p := range frame.Pixels {
		assert.Equal(t, neutralColor, p)
	}
}

func TestCompositeUniformInteriorFragmentPaintsBlack(t *testing.T) {
	vp := testViewport()
	c := New(palette.Default(), 1)

	frag := Fragment{
		Bounds:       tilegrid.Bounds{CenterRe: vp.CenterRe, CenterIm: vp.CenterIm, Side: 2},
		TileSizePx:   16,
		Uniform:      true,
		UniformValue: float32(perturb.Interior),
	}

	frame := c.Composite(vp, nil, []Fragment{frag})
	center := frame.Pixels[4*vp.Width+4]
	assert.Equal(t, uint8(0), center.R)
	assert.Equal(t, uint8(0), center.G)
	assert.Equal(t, uint8(0), center.B)
}

func TestCompositeErroredFragmentPaintsNeutral(t *testing.T) {
	vp := testViewport()
	c := New(palette.Default(), 1)

	frag := Fragment{
		Bounds:     tilegrid.Bounds{CenterRe: vp.CenterRe, CenterIm: vp.CenterIm, Side: 2},
		TileSizePx: 16,
		Errored:    true,
	}

	frame := c.Composite(vp, nil, []Fragment{frag})
	center := frame.Pixels[4*vp.Width+4]
	assert.Equal(t, neutralColor, center)
}

func TestCompositeUsesBaseSnapshotAsBackdrop(t *testing.T) {
	vp := testViewport()
	c := New(palette.Default(), 1)

	warm := reproject.Pixel{R: 200, G: 100, B: 50, A: 255}
	base := &reproject.Snapshot{
		Pixels: make([]reproject.Pixel, vp.Width*vp.Height),
	}
	for i := range base.Pixels {
		base.Pixels[i] = warm
	}

	frame := c.Composite(vp, base, nil)
	for _, p := range frame.Pixels {
		assert.Equal(t, warm, p)
	}
}

func TestCompositePerPixelFragmentUsesPalette(t *testing.T) {
	vp := testViewport()
	scheme := palette.Default()
	c := New(scheme, 1)

	data := make([]float32, 4*4)
	for i := range data {
		data[i] = 10 // arbitrary escaped mu value
	}
	frag := Fragment{
		Bounds:     tilegrid.Bounds{CenterRe: vp.CenterRe, CenterIm: vp.CenterIm, Side: 1},
		TileSizePx: 4,
		Data:       data,
	}

	frame := c.Composite(vp, nil, []Fragment{frag})
	want := paletteColor(scheme, 1, 10)
	center := frame.Pixels[4*vp.Width+4]
	assert.Equal(t, want, center)
}
