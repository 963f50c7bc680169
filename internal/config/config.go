// Package config holds the engine's recognized option set (SPEC_FULL.md §6)
// and the typed error-kind enum used across the core (§7).
//
// Grounded on the teacher's internal/tile.Config struct shape and
// tile/memlimit.go's ComputeMemoryLimit, adapted into AutoCacheBudget.
package config

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Config holds every recognized option from spec §6.
type Config struct {
	TileSize int // pixels per tile edge (default 256)

	L1CacheTiles int // default 64
	L2CacheTiles int // default 256
	L3CacheTiles int // default 2048
	L3BytesCap   int64

	WorkerCount          int // override for default CPU_cores-1
	MaxConcurrentRenders int // dispatch gate (default 4)

	EscapeRadius float64 // inner-loop threshold (default 2.0)

	DDThreshold            float64
	PerturbationThreshold  float64
	ArbitraryThreshold     float64
	DeepPerturbationRefMag float64 // deep-perturbation refs use 1e8 (spec §6)

	ModeChangeCooldownMs int

	PrefetchEnabled bool

	Verbose bool
}

// Default returns the configuration spec §6 describes as recognized
// defaults.
func Default() Config {
	return Config{
		TileSize:               256,
		L1CacheTiles:           64,
		L2CacheTiles:           256,
		L3CacheTiles:           2048,
		L3BytesCap:             500 * 1024 * 1024,
		WorkerCount:            0, // 0 means "use CPU_cores-1"
		MaxConcurrentRenders:   4,
		EscapeRadius:           2.0,
		DDThreshold:            5e-6,
		PerturbationThreshold:  1e-10,
		ArbitraryThreshold:     1e-14,
		DeepPerturbationRefMag: 1e8,
		ModeChangeCooldownMs:   100,
		PrefetchEnabled:        true,
	}
}

// ResolvedWorkerCount returns WorkerCount if set, else max(2, CPU_cores-1)
// per spec §5.
func (c Config) ResolvedWorkerCount() int {
	if c.WorkerCount > 0 {
		return c.WorkerCount
	}
	n := runtime.NumCPU() - 1
	if n < 2 {
		n = 2
	}
	return n
}

// Validate checks the invariants spec §7's ConfigInvalid error kind covers:
// scale-independent settings only (viewport scale itself is validated by
// viewport.Viewport.Validate).
func (c Config) Validate() error {
	if c.TileSize <= 0 || c.TileSize&(c.TileSize-1) != 0 {
		return fmt.Errorf("%w: tile_size must be a power of 2, got %d", ErrConfigInvalid, c.TileSize)
	}
	if c.EscapeRadius <= 0 {
		return fmt.Errorf("%w: escape_radius must be > 0", ErrConfigInvalid)
	}
	if c.MaxConcurrentRenders <= 0 {
		return fmt.Errorf("%w: max_concurrent_renders must be > 0", ErrConfigInvalid)
	}
	return nil
}

// AutoCacheBudget returns a RAM-aware L3 byte cap when the configured
// L3BytesCap is left at zero, adapted from tile/memlimit.go's
// ComputeMemoryLimit: reserve a fraction of total system RAM minus current
// Go runtime overhead, floored at a sane minimum.
func AutoCacheBudget(fraction float64) int64 {
	totalRAM, err := totalSystemRAM()
	if err != nil {
		logrus.WithError(err).Warn("config: cannot detect system RAM, disk cache budget capped to default")
		return Default().L3BytesCap
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	overhead := m.Sys + 2*1024*1024*1024

	limit := int64(float64(totalRAM)*fraction) - int64(overhead)
	const floor = 256 * 1024 * 1024
	if limit < floor {
		logrus.WithFields(logrus.Fields{"total_ram": totalRAM, "computed_limit": limit}).
			Warn("config: computed L3 budget too small, using floor")
		return floor
	}
	return limit
}
