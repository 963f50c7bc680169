// Package coordinator implements the Engine: the top-level state machine
// binding viewport changes to the PrecisionSelector, TilePipeline,
// Reprojector, ViewportPredictor, and Compositor, and the host-facing
// external interface (SPEC_FULL.md §4.12, §6).
//
// Grounded on cmd/geotiff2pmtiles/main.go's orchestration shape — resolve
// config, build shared caches, run the conversion passes, report stats —
// turned from a one-shot batch driver into a long-lived stateful engine
// that re-runs that same shape on every SetViewport call.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/deepzoom/mandelcore/internal/cache"
	"github.com/deepzoom/mandelcore/internal/cache/l1"
	"github.com/deepzoom/mandelcore/internal/cache/l2"
	"github.com/deepzoom/mandelcore/internal/cache/l3"
	"github.com/deepzoom/mandelcore/internal/compositor"
	"github.com/deepzoom/mandelcore/internal/config"
	"github.com/deepzoom/mandelcore/internal/palette"
	"github.com/deepzoom/mandelcore/internal/pipeline"
	"github.com/deepzoom/mandelcore/internal/precision"
	"github.com/deepzoom/mandelcore/internal/prefetch"
	"github.com/deepzoom/mandelcore/internal/reproject"
	"github.com/deepzoom/mandelcore/internal/stats"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
	"github.com/deepzoom/mandelcore/internal/viewport"
)

// State is the Coordinator's top-level state (spec §4.12).
type State int

const (
	StateIdle State = iota
	StateDirtyReprojecting
	StateDirtyComputing
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDirtyReprojecting:
		return "dirty_reprojecting"
	case StateDirtyComputing:
		return "dirty_computing"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// noopPending is the PendingSet the Coordinator hands to internal/prefetch:
// each SetViewport call dispatches its whole batch (visible + prefetch)
// through one synchronous pipeline.RequestVisible round, so there is no
// longer-lived in-flight set for the prefetch strategies to dedupe
// against beyond what they already dedupe internally against the current
// visible set.
type noopPending struct{}

func (noopPending) Contains(tilegrid.Identity) bool { return false }

// Engine is the host-facing core: SetViewport/GetFrame/GetStats (spec §6).
type Engine struct {
	mu sync.Mutex

	cfg       config.Config
	pipe      *pipeline.Pipeline
	l1        *l1.Cache
	reproj    *reproject.Reprojector
	predictor *viewport.Predictor
	comp      *compositor.Compositor
	tracker   *stats.Tracker

	state   State
	current viewport.Viewport
	frame   compositor.Frame
}

// New builds an Engine. l3store may be nil to run L1+L2 only (spec §7
// CacheBackendFault: "the engine continues with L1+L2 only").
func New(cfg config.Config, l3store l3.Store) *Engine {
	return &Engine{
		cfg:       cfg,
		pipe:      pipeline.New(cfg, l2.New(cfg.L2CacheTiles), l3store),
		l1:        l1.New(cfg.L1CacheTiles),
		reproj:    reproject.New(),
		predictor: viewport.NewPredictor(),
		comp:      compositor.New(palette.Default(), 1),
		tracker:   stats.New(),
		state:     StateIdle,
	}
}

// State returns the Coordinator's current state-machine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetViewport is the host's single input (spec §6): a viewport change
// drives one full reproject→dispatch→composite cycle synchronously, ending
// in `settled` once no requested tile comes back pending, rendering or
// cancelled, or `dirty_computing` otherwise. Errored tiles are painted
// neutral and do not hold the state in `dirty_computing`.
func (e *Engine) SetViewport(centerReStr, centerImStr string, centerRe, centerIm, scale float64, maxIter, width, height int) error {
	vp := viewport.Viewport{
		CenterReStr: centerReStr,
		CenterImStr: centerImStr,
		CenterRe:    centerRe,
		CenterIm:    centerIm,
		Scale:       scale,
		Width:       width,
		Height:      height,
		MaxIter:     maxIter,
	}
	if err := vp.Validate(); err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()

	// spec §4.12: "Direction-reverse event in any dirty state: cancel
	// stale prefetches (visible jobs continue)." Each SetViewport call
	// here completes its own dispatch synchronously, so there is nothing
	// in flight to cancel — this only drops the request batch this frame
	// would otherwise have issued.
	reversed := e.predictor.HasDirectionChanged()

	e.state = StateDirtyReprojecting
	newRV := reproject.Viewport{CenterRe: centerRe, CenterIm: centerIm, Scale: scale, Width: width, Height: height}
	var base *reproject.Snapshot
	if e.reproj.ShouldReproject(newRV) {
		snap := reproject.Snapshot{Viewport: newRV, Pixels: e.reproj.Warp(newRV)}
		base = &snap
	}
	e.predictor.Update(centerRe, centerIm, scale, now)

	shortAxis := width
	if height < shortAxis {
		shortAxis = height
	}
	if shortAxis <= 0 {
		return fmt.Errorf("coordinator: width/height must be positive")
	}
	unitsPerPixel := scale / float64(shortAxis)
	halfWidth := unitsPerPixel * float64(width) / 2
	halfHeight := unitsPerPixel * float64(height) / 2

	level := tilegrid.LevelForTileSize(scale, shortAxis, e.cfg.TileSize)
	tier := e.pipe.SelectTier(scale, now)
	e.tracker.SetTier(tier)

	if tier == precision.TierPerturbation || tier == precision.TierArbitrary {
		if err := e.pipe.EnsureOrbit(centerReStr, centerImStr, centerRe, centerIm, scale, maxIter); err != nil {
			return fmt.Errorf("coordinator: %w", err)
		}
	}

	e.state = StateDirtyComputing

	var extra []tilegrid.Identity
	if e.cfg.PrefetchEnabled && !reversed {
		xMin, xMax, yMin, yMax := tilegrid.VisibleBounds(level, centerRe, centerIm, halfWidth, halfHeight)
		rect := prefetch.VisibleRect{Level: level, XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax, MaxIter: maxIter}
		for _, req := range prefetch.Plan(e.predictor, rect, now, noopPending{}) {
			if prefetch.ShouldCancel(e.predictor, req) {
				continue
			}
			extra = append(extra, req.Tile)
		}
	}

	results, err := e.pipe.RequestVisible(context.Background(), level, centerRe, centerIm, halfWidth, halfHeight, maxIter, extra, tier, centerReStr, centerImStr)
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}

	fragments := make([]compositor.Fragment, 0, len(results))
	outstanding := 0
	for _, res := range results {
		e.tracker.RecordTileStatus(res.Status.String())
		switch res.Status {
		case pipeline.StatusComplete:
			fragments = append(fragments, fragmentFor(res))
			e.tracker.RecordRenderTime(res.RenderMs)
			key := cache.Key{Level: res.Job.Tile.Level, X: res.Job.Tile.X, Y: res.Job.Tile.Y, MaxIter: res.Job.Tile.MaxIter}
			e.l1.Upload(key, res.Job.TileSizePx, now.UnixMilli())
		case pipeline.StatusError:
			fragments = append(fragments, compositor.Fragment{Bounds: res.Job.Bounds, TileSizePx: res.Job.TileSizePx, Errored: true})
			logrus.WithFields(logrus.Fields{"tile": res.Job.Tile}).Warn("coordinator: tile render error, painting neutral")
		case pipeline.StatusCancelled, pipeline.StatusPending, pipeline.StatusRendering:
			outstanding++
			if pv, ok := e.pipe.PreviewFor(res.Job.Tile); ok {
				fragments = append(fragments, compositor.Fragment{
					Bounds:     res.Job.Bounds,
					TileSizePx: res.Job.TileSizePx,
					Data:       pv.Stretch(res.Job.Tile, res.Job.TileSizePx),
					IsPreview:  true,
				})
			}
		}
	}

	frame := e.comp.Composite(vp, base, fragments)
	e.l1.Sweep()
	e.frame = frame
	e.reproj.Commit(reproject.Snapshot{Viewport: newRV, Pixels: frame.Pixels})
	e.tracker.RecordFrame(now)
	e.current = vp

	if outstanding == 0 {
		e.state = StateSettled
	}
	return nil
}

// GetFrame returns the most recently composited framebuffer (spec §6).
func (e *Engine) GetFrame() compositor.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// GetStats returns the current engine statistics (spec §6).
func (e *Engine) GetStats() stats.Stats {
	return e.tracker.Snapshot()
}

// fragmentFor builds a compositor.Fragment from a completed tile result,
// taking the uniform-tile fast path when every pixel shares one value
// (internal/tile/tiledata.go's detectUniform, adapted to f32 mu buffers).
func fragmentFor(res pipeline.Result) compositor.Fragment {
	if v, ok := uniformValue(res.Data); ok {
		return compositor.Fragment{Bounds: res.Job.Bounds, TileSizePx: res.Job.TileSizePx, Uniform: true, UniformValue: v}
	}
	return compositor.Fragment{Bounds: res.Job.Bounds, TileSizePx: res.Job.TileSizePx, Data: res.Data}
}

func uniformValue(data []float32) (float32, bool) {
	if len(data) == 0 {
		return 0, false
	}
	first := data[0]
	for _, v := range data[1:] {
		if v != first {
			return 0, false
		}
	}
	return first, true
}
