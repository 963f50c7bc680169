// Package palette is a minimal built-in color scheme so the Compositor is
// exercisable end-to-end without a host-supplied palette (palette
// selection itself is an external collaborator per the spec's Non-goals —
// this package is a stand-in, not the full feature).
//
// Grounded on other_examples' whalelogic-mandelbrot: the smooth escape
// count (nu = n+1-log(log|z|)/log(2)) is computed upstream in
// internal/perturb; this package picks up from there, linearly
// interpolating between a short list of control colors the way that
// program's palette.ColorMap.Interpolate does.
package palette

import "math"

// Color is a simple RGB triple, [0,255] per channel.
type Color struct {
	R, G, B uint8
}

// Black is returned for interior points (mu < 0), per spec §4.11.
var Black = Color{0, 0, 0}

// Scheme is an ordered list of control colors spanning t in [0,1].
type Scheme struct {
	Stops []Color
}

// Default is a small built-in dark-to-warm gradient resembling the
// classic Mandelbrot "fire" palette.
func Default() Scheme {
	return Scheme{Stops: []Color{
		{0, 7, 100},
		{32, 107, 203},
		{237, 255, 255},
		{255, 170, 0},
		{0, 2, 0},
	}}
}

// Apply maps a smoothed escape count mu through scheme with the given
// offset (cyclic shift in [0,1)) and scale (cycles per unit mu), per spec
// §4.11's "(mu, scheme, offset, scale) -> rgb". mu<0 always yields black.
func Apply(mu float64, scheme Scheme, offset, scale float64) Color {
	if mu < 0 {
		return Black
	}
	t := mu*scale + offset
	t -= math.Floor(t) // wrap into [0,1)
	return interpolate(scheme, t)
}

func interpolate(scheme Scheme, t float64) Color {
	n := len(scheme.Stops)
	if n == 0 {
		return Black
	}
	if n == 1 {
		return scheme.Stops[0]
	}
	pos := t * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return scheme.Stops[n-1]
	}
	frac := pos - float64(i)
	a, b := scheme.Stops[i], scheme.Stops[i+1]
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*frac)
	}
	return Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B)}
}
