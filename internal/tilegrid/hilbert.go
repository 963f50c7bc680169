package tilegrid

import "sort"

// xyToHilbert converts (x, y) to a Hilbert curve index for an n x n grid.
// n must be a power of two. Ported near-verbatim from the teacher's
// internal/coord/hilbert.go — the algorithm is already projection-agnostic,
// operating purely on integer tile coordinates.
func xyToHilbert(x, y, n uint64) uint64 {
	var d uint64
	s := n / 2
	for s > 0 {
		var rx, ry uint64
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		if ry == 0 {
			if rx == 1 {
				x = s*2 - 1 - x
				y = s*2 - 1 - y
			}
			x, y = y, x
		}
		s /= 2
	}
	return d
}

// toUnsigned shifts a possibly-negative tile coordinate into the unsigned
// range a Hilbert index needs, over a grid wide enough to cover it. Tile
// coordinates here can be negative (the complex plane's origin sits inside
// the tile grid, unlike a web-mercator tile scheme), so this offset is new
// relative to the teacher, which never had negative tile coordinates.
func toUnsigned(level, v int) uint64 {
	n := int64(1) << uint(level+1) // generous headroom above the visible range
	return uint64(int64(v) + n)
}

// SortByHilbert orders tiles by their Hilbert-curve index within their
// zoom level, preserving 2D spatial locality so a worker pool consuming
// tiles sequentially gets good reference-orbit and L2-cache reuse (spec
// §4.6 "Hilbert-curve scheduling" / SPEC_FULL.md §4.6 expansion). All tiles
// must share the same Level.
func SortByHilbert(tiles []Identity) {
	if len(tiles) <= 1 {
		return
	}
	level := tiles[0].Level
	n := uint64(1) << uint(level+2) // grid wide enough for the shifted coordinates

	indices := make([]uint64, len(tiles))
	for i, t := range tiles {
		indices[i] = xyToHilbert(toUnsigned(level, t.X), toUnsigned(level, t.Y), n)
	}
	sort.Sort(hilbertSorter{tiles: tiles, indices: indices})
}

type hilbertSorter struct {
	tiles   []Identity
	indices []uint64
}

func (s hilbertSorter) Len() int           { return len(s.tiles) }
func (s hilbertSorter) Less(i, j int) bool { return s.indices[i] < s.indices[j] }
func (s hilbertSorter) Swap(i, j int) {
	s.tiles[i], s.tiles[j] = s.tiles[j], s.tiles[i]
	s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
}
