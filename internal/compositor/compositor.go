// Package compositor assembles completed tiles onto the output framebuffer,
// applies a per-pixel palette to smoothed-iteration data, and blends the
// result with the Reprojector's warped base image (SPEC_FULL.md §4.11).
//
// Grounded on internal/tile/tiledata.go's uniform-tile fast path: a tile
// whose every pixel shares one value (the overwhelmingly common interior
// case, mu == -1) is painted with a single fill loop instead of a per-pixel
// palette lookup, the same shortcut the teacher takes for ocean/nodata
// tiles.
package compositor

import (
	"image"
	"image/color"

	"github.com/deepzoom/mandelcore/internal/palette"
	"github.com/deepzoom/mandelcore/internal/reproject"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
	"github.com/deepzoom/mandelcore/internal/viewport"
)

// neutralColor is painted over a tile's output footprint when its job
// reported status=error (spec §7 "TileRenderError... the Compositor paints
// it neutral").
var neutralColor = reproject.Pixel{R: 16, G: 16, B: 20, A: 255}

// previewAlpha is the blend weight used for stretch-blitted ancestor
// previews (SPEC_FULL.md §4.0), so a placeholder reads as provisional
// rather than identical to a finished tile.
const previewAlpha = 200

// Fragment is one tile's contribution to a composite pass.
type Fragment struct {
	Bounds     tilegrid.Bounds
	TileSizePx int

	// Data is the tile's row-major smoothed-iteration buffer. Nil when
	// Uniform is true, in which case UniformValue is used for every pixel.
	Data         []float32
	Uniform      bool
	UniformValue float32

	IsPreview bool // stretch-blitted ancestor tile (§4.0), not the tile itself
	Errored   bool // job reported status=error; painted neutral instead
}

// Frame is the composited output framebuffer: RGBA8 at the viewport's pixel
// dimensions (spec §6 "get_frame() returns... RGBA u8 width x height").
type Frame struct {
	Width, Height int
	Pixels        []reproject.Pixel
}

var _ image.Image = (*Frame)(nil)

func (f *Frame) ColorModel() color.Model { return color.RGBAModel }

func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f *Frame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	p := f.Pixels[y*f.Width+x]
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: p.A}
}

// Compositor holds the palette a frame is rendered with. Palette selection
// itself is a host/external-collaborator concern (spec Non-goals); this is
// the minimal built-in scheme that exercises the rest of the pipeline.
type Compositor struct {
	scheme       palette.Scheme
	paletteScale float64
}

// New builds a Compositor with the given palette scheme and mu→t scale
// factor (palette.Apply's scale parameter).
func New(scheme palette.Scheme, paletteScale float64) *Compositor {
	if paletteScale == 0 {
		paletteScale = 1
	}
	return &Compositor{scheme: scheme, paletteScale: paletteScale}
}

// Composite renders one frame: starts from base (the Reprojector's warped
// snapshot, or a neutral fill if base is nil — spec §4.12 "idle" has no
// prior frame to reproject from) and layers fragments on top via alpha
// blending (spec §4.11).
func (c *Compositor) Composite(vp viewport.Viewport, base *reproject.Snapshot, fragments []Fragment) Frame {
	frame := Frame{Width: vp.Width, Height: vp.Height, Pixels: make([]reproject.Pixel, vp.Width*vp.Height)}
	if base != nil && len(base.Pixels) == vp.Width*vp.Height {
		copy(frame.Pixels, base.Pixels)
	} else {
		for i := range frame.Pixels {
			frame.Pixels[i] = neutralColor
		}
	}

	shortAxis := vp.Width
	if vp.Height < shortAxis {
		shortAxis = vp.Height
	}
	if shortAxis <= 0 {
		return frame
	}
	unitsPerPixel := vp.Scale / float64(shortAxis)
	if unitsPerPixel <= 0 {
		return frame
	}

	for _, frag := range fragments {
		c.paintFragment(&frame, vp, unitsPerPixel, frag)
	}
	return frame
}

func (c *Compositor) paintFragment(frame *Frame, vp viewport.Viewport, unitsPerPixel float64, frag Fragment) {
	if frag.Errored {
		c.fillFragment(frame, vp, unitsPerPixel, frag, neutralColor, 255)
		return
	}
	if frag.Uniform {
		col := paletteColor(c.scheme, c.paletteScale, frag.UniformValue)
		alpha := uint8(255)
		if frag.IsPreview {
			alpha = previewAlpha
		}
		c.fillFragment(frame, vp, unitsPerPixel, frag, col, alpha)
		return
	}
	c.paintPerPixel(frame, vp, unitsPerPixel, frag)
}

// fillFragment paints every output pixel covered by frag's complex bounds
// with a single color, the uniform-tile fast path.
func (c *Compositor) fillFragment(frame *Frame, vp viewport.Viewport, unitsPerPixel float64, frag Fragment, col reproject.Pixel, alpha uint8) {
	x0, y0 := complexToPixel(vp, unitsPerPixel, frag.Bounds.CenterRe-frag.Bounds.Side/2, frag.Bounds.CenterIm-frag.Bounds.Side/2)
	x1, y1 := complexToPixel(vp, unitsPerPixel, frag.Bounds.CenterRe+frag.Bounds.Side/2, frag.Bounds.CenterIm+frag.Bounds.Side/2)
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	x0, x1 = clampRange(x0, x1, frame.Width)
	y0, y1 = clampRange(y0, y1, frame.Height)

	for y := y0; y < y1; y++ {
		row := y * frame.Width
		for x := x0; x < x1; x++ {
			frame.Pixels[row+x] = blend(frame.Pixels[row+x], col, alpha)
		}
	}
}

func (c *Compositor) paintPerPixel(frame *Frame, vp viewport.Viewport, unitsPerPixel float64, frag Fragment) {
	step := frag.Bounds.Side / float64(frag.TileSizePx)
	originRe := frag.Bounds.CenterRe - frag.Bounds.Side/2
	originIm := frag.Bounds.CenterIm - frag.Bounds.Side/2
	alpha := uint8(255)
	if frag.IsPreview {
		alpha = previewAlpha
	}

	for py := 0; py < frag.TileSizePx; py++ {
		cIm := originIm + (float64(py)+0.5)*step
		for px := 0; px < frag.TileSizePx; px++ {
			cRe := originRe + (float64(px)+0.5)*step
			mu := frag.Data[py*frag.TileSizePx+px]

			ox, oy := complexToPixel(vp, unitsPerPixel, cRe, cIm)
			if ox < 0 || oy < 0 || ox >= frame.Width || oy >= frame.Height {
				continue
			}
			col := paletteColor(c.scheme, c.paletteScale, mu)
			idx := oy*frame.Width + ox
			frame.Pixels[idx] = blend(frame.Pixels[idx], col, alpha)
		}
	}
}

func paletteColor(scheme palette.Scheme, scale float64, mu float32) reproject.Pixel {
	c := palette.Apply(float64(mu), scheme, 0, scale)
	return reproject.Pixel{R: c.R, G: c.G, B: c.B, A: 255}
}

// complexToPixel maps a complex-plane point to an output framebuffer pixel,
// the inverse of render.go's per-pixel complex-coordinate walk.
func complexToPixel(vp viewport.Viewport, unitsPerPixel, re, im float64) (int, int) {
	x := int(float64(vp.Width)/2 + (re-vp.CenterRe)/unitsPerPixel)
	y := int(float64(vp.Height)/2 + (im-vp.CenterIm)/unitsPerPixel)
	return x, y
}

func clampRange(a, b, max int) (int, int) {
	if a < 0 {
		a = 0
	}
	if b > max {
		b = max
	}
	if a > b {
		a = b
	}
	return a, b
}

// blend performs straightforward alpha blending (spec §4.11), src over dst.
func blend(dst, src reproject.Pixel, alpha uint8) reproject.Pixel {
	if alpha >= 255 {
		return src
	}
	a := float64(alpha) / 255
	return reproject.Pixel{
		R: blendChannel(dst.R, src.R, a),
		G: blendChannel(dst.G, src.G, a),
		B: blendChannel(dst.B, src.B, a),
		A: 255,
	}
}

func blendChannel(dst, src uint8, a float64) uint8 {
	return uint8(float64(src)*a + float64(dst)*(1-a))
}
