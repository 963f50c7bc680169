// Package encode turns a composited frame into image bytes for
// cmd/mandelsnap and debug-snapshot export (SPEC_FULL.md §4.11).
//
// Trimmed from the teacher's internal/encode, which additionally covered
// PMTiles tile-type tagging and Mapbox-Terrarium elevation encoding — both
// GeoTIFF/PMTiles-domain concerns no Mandelbrot operation reaches.
package encode

import (
	"fmt"
	"image"
)

// Encoder encodes a composited frame into image bytes.
type Encoder interface {
	// Encode encodes an image to bytes in the target format.
	Encode(img image.Image) ([]byte, error)

	// Format returns the format name (e.g. "jpeg", "png", "webp").
	Format() string

	// FileExtension returns the appropriate file extension.
	FileExtension() string
}

// NewEncoder creates an encoder for the given format and quality.
func NewEncoder(format string, quality int) (Encoder, error) {
	switch format {
	case "jpeg", "jpg":
		return &JPEGEncoder{Quality: quality}, nil
	case "png":
		return &PNGEncoder{}, nil
	case "webp":
		return newWebPEncoder(quality)
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %q (supported: jpeg, png, webp)", format)
	}
}
