package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/deepzoom/mandelcore/internal/cache"
	"github.com/deepzoom/mandelcore/internal/cache/l2"
	"github.com/deepzoom/mandelcore/internal/cache/l3"
	"github.com/deepzoom/mandelcore/internal/config"
	"github.com/deepzoom/mandelcore/internal/orbit"
	"github.com/deepzoom/mandelcore/internal/precision"
	"github.com/deepzoom/mandelcore/internal/tilegrid"
)

// Pipeline computes a viewport's visible tile set, checks the cache
// hierarchy, and dispatches misses to a bounded worker pool (spec §4.6).
//
// The Coordinator owns one Pipeline; workers hold no state of their own
// beyond the read-only reference orbit, matching spec §5's "single-threaded
// per tile... no shared mutable state inside a worker job".
type Pipeline struct {
	cfg config.Config
	l2  *l2.Cache
	l3  l3.Store

	selector *precision.Selector

	orbitMu  sync.RWMutex
	refOrbit *orbit.Orbit

	sem chan struct{} // bounds concurrent renders to cfg.MaxConcurrentRenders
}

// New builds a Pipeline. l3store may be nil (spec §4.7 "L3 optional").
func New(cfg config.Config, l2cache *l2.Cache, l3store l3.Store) *Pipeline {
	gate := cfg.MaxConcurrentRenders
	if gate <= 0 {
		gate = 4
	}
	return &Pipeline{
		cfg:      cfg,
		l2:       l2cache,
		l3:       l3store,
		selector: precision.NewSelector(precision.Thresholds{DD: cfg.DDThreshold, Perturbation: cfg.PerturbationThreshold, Arbitrary: cfg.ArbitraryThreshold}, time.Duration(cfg.ModeChangeCooldownMs)*time.Millisecond),
		sem:      make(chan struct{}, gate),
	}
}

// Orbit returns the current shared reference orbit, or nil if none has
// been computed yet.
func (p *Pipeline) Orbit() *orbit.Orbit {
	p.orbitMu.RLock()
	defer p.orbitMu.RUnlock()
	return p.refOrbit
}

// SelectTier runs the PrecisionSelector for the given scale at time now.
// Callers that also need to EnsureOrbit before dispatching (the
// Coordinator) must call this exactly once per viewport update and pass
// the result into RequestVisible, since Select's cooldown hysteresis is
// stateful — selecting twice for one update would consume the hysteresis
// window twice.
func (p *Pipeline) SelectTier(scale float64, now time.Time) precision.Tier {
	return p.selector.Select(scale, now)
}

// EnsureOrbit recomputes the shared reference orbit if it is missing or
// stale (spec §4.3 "Recompute policy"). The old orbit, if any, is replaced
// wholesale — never mutated in place — so in-flight perturbation workers
// reading the previous *orbit.Orbit continue to see a consistent snapshot.
func (p *Pipeline) EnsureOrbit(centerReStr, centerImStr string, centerRe, centerIm, scale float64, maxIter int) error {
	p.orbitMu.RLock()
	current := p.refOrbit
	p.orbitMu.RUnlock()

	if current != nil && !current.NeedsRecompute(centerReStr, centerImStr, centerRe, centerIm, scale) {
		return nil
	}

	limbs := orbit.LimbsForScale(scale)
	next, err := orbit.Compute(centerReStr, centerImStr, scale, maxIter, limbs)
	if err != nil {
		return fmt.Errorf("pipeline: compute reference orbit: %w", err)
	}

	p.orbitMu.Lock()
	p.refOrbit = next
	p.orbitMu.Unlock()
	return nil
}

// pendingKeys tracks in-flight job keys across a single RequestVisible
// call, standing in for the Coordinator's longer-lived pending/rendering
// set (spec §4.6 "Request path").
type pendingKeys struct {
	mu   sync.Mutex
	seen map[cache.Key]bool
}

func (p *pendingKeys) tryClaim(k cache.Key) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seen[k] {
		return false
	}
	p.seen[k] = true
	return true
}

// RequestVisible computes the visible tile set for a viewport, serves
// cache hits immediately, and dispatches misses to the worker pool,
// honoring the priority ordering and the dispatch gate (spec §4.6).
// extraPrefetch carries additional lower-priority identities (from
// internal/prefetch) to fold into the same dispatch batch. tier is the
// result of a prior SelectTier call for this same viewport update.
func (p *Pipeline) RequestVisible(ctx context.Context, level int, centerRe, centerIm, halfWidth, halfHeight float64, maxIter int, extraPrefetch []tilegrid.Identity, tier precision.Tier, centerReStr, centerImStr string) ([]Result, error) {
	visible := tilegrid.VisibleSet(level, centerRe, centerIm, halfWidth, halfHeight, maxIter)
	tilegrid.SortByHilbert(visible)

	jobs := make([]Job, 0, len(visible)+len(extraPrefetch))
	for _, id := range visible {
		jobs = append(jobs, p.buildJob(id, tier, PriorityVisible, maxIter, centerReStr, centerImStr))
	}
	for _, id := range extraPrefetch {
		jobs = append(jobs, p.buildJob(id, tier, PriorityPrefetch, maxIter, centerReStr, centerImStr))
	}

	if tier == precision.TierPerturbation || tier == precision.TierArbitrary {
		// spec §5 ordering guarantee (iv): no perturbation job may be
		// dispatched before the reference orbit it depends on is ready.
		if p.refOrbit == nil {
			return nil, fmt.Errorf("pipeline: perturbation tier selected but reference orbit not yet computed")
		}
	}

	pending := &pendingKeys{seen: make(map[cache.Key]bool)}
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		key := cache.Key{Level: job.Tile.Level, X: job.Tile.X, Y: job.Tile.Y, MaxIter: job.Tile.MaxIter}

		if hit := p.l2.Get(key); hit != nil {
			results[i] = Result{Job: job, Status: StatusComplete, Data: hit.Data}
			continue
		}
		if p.l3 != nil {
			if hit, ok := p.l3.Get(key); ok {
				p.l2.Put(key, hit)
				results[i] = Result{Job: job, Status: StatusComplete, Data: hit.Data}
				continue
			}
		}
		if !pending.tryClaim(key) {
			continue
		}

		g.Go(func() error {
			select {
			case p.sem <- struct{}{}:
			case <-gctx.Done():
				results[i] = Result{Job: job, Status: StatusCancelled}
				return nil
			}
			defer func() { <-p.sem }()

			res := p.render(job)
			results[i] = res
			if res.Status == StatusComplete {
				p.writeThrough(key, job, res)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Pipeline) buildJob(id tilegrid.Identity, tier precision.Tier, priority Priority, maxIter int, centerReStr, centerImStr string) Job {
	bounds := tilegrid.TileBounds(id.Level, id.X, id.Y)
	return Job{
		Tile:        id,
		Bounds:      bounds,
		Tier:        tier,
		Priority:    priority,
		CenterReStr: centerReStr,
		CenterImStr: centerImStr,
		TileSizePx:  p.cfg.TileSize,
	}
}

func (p *Pipeline) render(job Job) Result {
	start := time.Now()
	escapeRadiusSq := p.cfg.EscapeRadius * p.cfg.EscapeRadius

	var data []float32
	var glitched bool

	switch job.Tier {
	case precision.TierStandard:
		data, glitched = renderStandard(job.Bounds, job.TileSizePx, job.Tile.MaxIter, escapeRadiusSq)
	case precision.TierDD:
		data, glitched = renderDD(job.Bounds, job.TileSizePx, job.Tile.MaxIter, escapeRadiusSq)
	case precision.TierPerturbation, precision.TierArbitrary:
		ref := p.Orbit()
		if ref == nil {
			return Result{Job: job, Status: StatusError, Err: fmt.Errorf("pipeline: no reference orbit available for perturbation tile %+v", job.Tile)}
		}
		data, glitched = renderPerturbation(ref, job.Bounds, job.TileSizePx, job.Tile.MaxIter, escapeRadiusSq, 0)
	default:
		return Result{Job: job, Status: StatusError, Err: fmt.Errorf("pipeline: unknown precision tier %v", job.Tier)}
	}

	return Result{
		Job:      job,
		Status:   StatusComplete,
		Data:     data,
		Glitched: glitched,
		RenderMs: float64(time.Since(start).Microseconds()) / 1000.0,
	}
}

// writeThrough caches a completed tile per spec §4.7's coherence rule: L2
// first (synchronous), L3 fire-and-forget.
func (p *Pipeline) writeThrough(key cache.Key, job Job, res Result) {
	entry := &cache.Entry{
		CenterRe:     job.Bounds.CenterRe,
		CenterIm:     job.Bounds.CenterIm,
		Scale:        job.Bounds.Side,
		PrecisionTag: uint8(job.Tier),
		StoredAtMs:   time.Now().UnixMilli(),
		WidthPx:      job.TileSizePx,
		Data:         res.Data,
	}
	// spec §4.7 "Invalidation": different precisions of the same tile key
	// are acceptable substitutes, with the finer (higher-tier) one winning
	// on overwrite.
	if existing := p.l2.Get(key); existing != nil && existing.PrecisionTag > entry.PrecisionTag {
		return
	}
	p.l2.Put(key, entry)

	if p.l3 != nil {
		go p.l3.Put(key, entry)
	}

	if res.Glitched {
		logrus.WithFields(logrus.Fields{"tile": job.Tile, "tier": job.Tier.String()}).
			Debug("pipeline: tile reported a perturbation glitch")
	}
}
