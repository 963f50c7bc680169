package viewport

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// interactingTimeout is the window within which the most recent update
// still counts as "the user is interacting" (spec §4.8).
const interactingTimeout = 200 * time.Millisecond

// weightHalfLife is the exponential decay constant for sample weighting
// (spec §4.8: weight = exp(-age/200ms)).
const weightHalfLife = 200 * time.Millisecond

// Prediction is an extrapolated future viewport plus a confidence in [0,1].
type Prediction struct {
	CenterX, CenterY, Scale float64
	Confidence              float64
}

// Predictor tracks a bounded history of recent viewport samples and
// estimates pan velocity / zoom rate via an age-weighted regression,
// grounded on the weighted-estimation machinery gonum.org/v1/gonum/stat
// provides (no pack repo tracks viewport motion directly; this is new,
// delegating the numerics to the ecosystem library rather than hand-rolled
// weighted sums).
type Predictor struct {
	history []Sample
}

// NewPredictor returns an empty predictor.
func NewPredictor() *Predictor {
	return &Predictor{}
}

// Update appends a new sample and prunes the deque to at most 20 entries
// or 1 second of wall time, whichever is smaller (spec §3).
func (p *Predictor) Update(cx, cy, scale float64, t time.Time) {
	p.history = append(p.history, Sample{CenterX: cx, CenterY: cy, Scale: scale, T: t})
	p.prune(t)
}

func (p *Predictor) prune(now time.Time) {
	cutoff := now.Add(-historyMaxAge)
	i := 0
	for ; i < len(p.history); i++ {
		if !p.history[i].T.Before(cutoff) {
			break
		}
	}
	p.history = p.history[i:]
	if len(p.history) > historyMaxEntries {
		p.history = p.history[len(p.history)-historyMaxEntries:]
	}
}

// velocityPair is one adjacent-sample derivative.
type velocityPair struct {
	vx, vy, zoomRate float64
	weight           float64
	t                time.Time
}

func (p *Predictor) pairs() []velocityPair {
	if len(p.history) < 2 {
		return nil
	}
	latest := p.history[len(p.history)-1].T
	out := make([]velocityPair, 0, len(p.history)-1)
	for i := 1; i < len(p.history); i++ {
		a, b := p.history[i-1], p.history[i]
		dt := b.T.Sub(a.T).Seconds()
		if dt <= 0 {
			continue
		}
		vx := (b.CenterX - a.CenterX) / dt
		vy := (b.CenterY - a.CenterY) / dt
		var zoomRate float64
		if a.Scale > 0 && b.Scale > 0 {
			zoomRate = math.Pow(b.Scale/a.Scale, 1/dt)
		} else {
			zoomRate = 1
		}
		age := latest.Sub(b.T)
		weight := math.Exp(-float64(age) / float64(weightHalfLife))
		out = append(out, velocityPair{vx: vx, vy: vy, zoomRate: zoomRate, weight: weight, t: b.T})
	}
	return out
}

// weightedMeans returns the weighted mean pan velocity and zoom rate, and
// the confidence per spec §4.8.
func (p *Predictor) weightedMeans() (vx, vy, zoomRate, confidence float64) {
	pairs := p.pairs()
	if len(pairs) == 0 {
		return 0, 0, 1, 0
	}

	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	zs := make([]float64, len(pairs))
	ws := make([]float64, len(pairs))
	for i, pr := range pairs {
		xs[i], ys[i], zs[i], ws[i] = pr.vx, pr.vy, pr.zoomRate, pr.weight
	}

	vx = stat.Mean(xs, ws)
	vy = stat.Mean(ys, ws)
	zoomRate = stat.Mean(zs, ws)

	samplesPer50ms := 0
	cutoff := p.history[len(p.history)-1].T.Add(-50 * time.Millisecond)
	for _, s := range p.history {
		if !s.T.Before(cutoff) {
			samplesPer50ms++
		}
	}
	timespan := p.history[len(p.history)-1].T.Sub(p.history[0].T)

	confCount := math.Min(1, float64(samplesPer50ms)*0.5)
	confSpan := math.Min(1, float64(timespan)/float64(200*time.Millisecond))
	confidence = confCount * confSpan
	return vx, vy, zoomRate, confidence
}

// Predict extrapolates the center linearly and scale geometrically by
// lookaheadMs into the future, clamped to [100,500]ms, with confidence
// decaying as exp(-lookahead/300ms).
func (p *Predictor) Predict(lookaheadMs float64) Prediction {
	if lookaheadMs < 100 {
		lookaheadMs = 100
	}
	if lookaheadMs > 500 {
		lookaheadMs = 500
	}
	if len(p.history) == 0 {
		return Prediction{}
	}

	last := p.history[len(p.history)-1]
	vx, vy, zoomRate, confidence := p.weightedMeans()

	lookaheadS := lookaheadMs / 1000.0
	cx := last.CenterX + vx*lookaheadS
	cy := last.CenterY + vy*lookaheadS
	scale := last.Scale * math.Pow(zoomRate, lookaheadS)

	confidence *= math.Exp(-lookaheadMs / 300.0)

	return Prediction{CenterX: cx, CenterY: cy, Scale: scale, Confidence: confidence}
}

// HasDirectionChanged compares the velocity over the latest 5 samples
// against the previous 5; a negative dot product means the pan direction
// reversed (spec §4.8).
func (p *Predictor) HasDirectionChanged() bool {
	pairs := p.pairs()
	if len(pairs) < 2 {
		return false
	}

	window := 5
	if window > len(pairs) {
		window = len(pairs)
	}
	recent := pairs[len(pairs)-window:]
	rx, ry := avgVelocity(recent)

	remaining := pairs[:len(pairs)-window]
	if len(remaining) == 0 {
		return false
	}
	prevWindow := window
	if prevWindow > len(remaining) {
		prevWindow = len(remaining)
	}
	previous := remaining[len(remaining)-prevWindow:]
	px, py := avgVelocity(previous)

	dot := rx*px + ry*py
	return dot < 0
}

func avgVelocity(pairs []velocityPair) (vx, vy float64) {
	if len(pairs) == 0 {
		return 0, 0
	}
	for _, pr := range pairs {
		vx += pr.vx
		vy += pr.vy
	}
	n := float64(len(pairs))
	return vx / n, vy / n
}

// IsInteracting reports whether the most recent update happened within the
// interaction timeout of now (spec §4.8).
func (p *Predictor) IsInteracting(now time.Time) bool {
	if len(p.history) == 0 {
		return false
	}
	last := p.history[len(p.history)-1].T
	return now.Sub(last) <= interactingTimeout
}

// Confidence returns the current estimation confidence without producing a
// full prediction.
func (p *Predictor) Confidence() float64 {
	_, _, _, c := p.weightedMeans()
	return c
}

// PanZoomRate exposes the weighted-mean pan velocity and zoom rate
// underlying Predict, for callers (the Prefetcher) that need the raw
// direction rather than an extrapolated position.
func (p *Predictor) PanZoomRate() (vx, vy, zoomRate float64) {
	vx, vy, zoomRate, _ = p.weightedMeans()
	return vx, vy, zoomRate
}
