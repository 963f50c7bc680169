// Package l3 implements the engine's persistent on-disk tile store: an
// append-only blob container keyed by (level,x,y,max_iter), with the exact
// header spec §6 specifies (SPEC_FULL.md §4.7).
//
// Grounded on internal/tile/diskstore.go's dedicated I/O goroutine +
// atomic.Pointer[os.File] + lock-free ReadAt design, retargeted from
// encoded raster tiles onto Mandelbrot iteration-value blobs, and on
// internal/pmtiles's two-pass writer / FNV-hash content dedup (uniform
// tiles collapse to one stored blob).
package l3

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/deepzoom/mandelcore/internal/cache"
)

// headerSize is the fixed-width blob header: coord (3×int32) + center_r/
// center_i/scale (3×f64) + max_iter (uint32) + precision_tag (uint8) +
// stored_at (uint64) + width_px (uint16), per spec §6.
const headerSize = 3*4 + 3*8 + 4 + 1 + 8 + 2

// encodeBlob serializes key+entry into the spec §6 wire format: header
// followed by width*width little-endian f32 iteration values.
func encodeBlob(key cache.Key, entry *cache.Entry) []byte {
	buf := make([]byte, headerSize+4*len(entry.Data))
	i := 0
	binary.LittleEndian.PutUint32(buf[i:], uint32(int32(key.Level)))
	i += 4
	binary.LittleEndian.PutUint32(buf[i:], uint32(int32(key.X)))
	i += 4
	binary.LittleEndian.PutUint32(buf[i:], uint32(int32(key.Y)))
	i += 4
	binary.LittleEndian.PutUint64(buf[i:], math.Float64bits(entry.CenterRe))
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], math.Float64bits(entry.CenterIm))
	i += 8
	binary.LittleEndian.PutUint64(buf[i:], math.Float64bits(entry.Scale))
	i += 8
	binary.LittleEndian.PutUint32(buf[i:], uint32(key.MaxIter))
	i += 4
	buf[i] = entry.PrecisionTag
	i++
	binary.LittleEndian.PutUint64(buf[i:], uint64(entry.StoredAtMs))
	i += 8
	binary.LittleEndian.PutUint16(buf[i:], uint16(entry.WidthPx))
	i += 2

	for _, v := range entry.Data {
		binary.LittleEndian.PutUint32(buf[i:], math.Float32bits(v))
		i += 4
	}
	return buf
}

// decodeBlob parses the wire format back into key+entry.
func decodeBlob(buf []byte) (cache.Key, *cache.Entry, error) {
	if len(buf) < headerSize {
		return cache.Key{}, nil, fmt.Errorf("l3: blob shorter than header (%d < %d)", len(buf), headerSize)
	}
	i := 0
	key := cache.Key{}
	key.Level = int(int32(binary.LittleEndian.Uint32(buf[i:])))
	i += 4
	key.X = int(int32(binary.LittleEndian.Uint32(buf[i:])))
	i += 4
	key.Y = int(int32(binary.LittleEndian.Uint32(buf[i:])))
	i += 4

	entry := &cache.Entry{}
	entry.CenterRe = math.Float64frombits(binary.LittleEndian.Uint64(buf[i:]))
	i += 8
	entry.CenterIm = math.Float64frombits(binary.LittleEndian.Uint64(buf[i:]))
	i += 8
	entry.Scale = math.Float64frombits(binary.LittleEndian.Uint64(buf[i:]))
	i += 8
	key.MaxIter = int(binary.LittleEndian.Uint32(buf[i:]))
	i += 4
	entry.PrecisionTag = buf[i]
	i++
	entry.StoredAtMs = int64(binary.LittleEndian.Uint64(buf[i:]))
	i += 8
	entry.WidthPx = int(binary.LittleEndian.Uint16(buf[i:]))
	i += 2

	want := headerSize + 4*entry.WidthPx*entry.WidthPx
	if len(buf) < want {
		return cache.Key{}, nil, fmt.Errorf("l3: blob truncated (%d < %d)", len(buf), want)
	}
	entry.Data = make([]float32, entry.WidthPx*entry.WidthPx)
	for j := range entry.Data {
		entry.Data[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i:]))
		i += 4
	}
	return key, entry, nil
}

// contentHash returns an FNV-1a hash of the entry's pixel data, used to
// deduplicate identical blobs (overwhelmingly uniform-interior tiles).
func contentHash(entry *cache.Entry) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 4)
	for _, v := range entry.Data {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		h.Write(buf)
	}
	return h.Sum64()
}
