package viewport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsBadViewport(t *testing.T) {
	v := Viewport{Scale: 0, MaxIter: 256}
	assert.Error(t, v.Validate())

	v = Viewport{Scale: 1.0, MaxIter: 10}
	assert.Error(t, v.Validate())

	v = Viewport{Scale: 1.0, MaxIter: 256}
	assert.NoError(t, v.Validate())
}

func TestPredictorConstantVelocityExtrapolation(t *testing.T) {
	p := NewPredictor()
	t0 := time.Now()
	// Constant pan velocity of 1.0 units/sec in x, steady scale.
	for i := 0; i < 10; i++ {
		p.Update(float64(i)*0.02, 0, 1.0, t0.Add(time.Duration(i)*20*time.Millisecond))
	}

	pred := p.Predict(200)
	// Analytic extrapolation: last sample at x=0.18, t=180ms; velocity ~1.0/s.
	// At lookahead 200ms, expect roughly x ~= 0.18 + 1.0*0.2 = 0.38.
	assert.InDelta(t, 0.38, pred.CenterX, 0.05)
}

func TestPredictorDirectionReversal(t *testing.T) {
	p := NewPredictor()
	t0 := time.Now()
	// Pan east for a while.
	for i := 0; i < 6; i++ {
		p.Update(float64(i)*0.02, 0, 1.0, t0.Add(time.Duration(i)*20*time.Millisecond))
	}
	assert.False(t, p.HasDirectionChanged())

	// Then reverse direction (pan west).
	last := 6 * 20
	for i := 1; i <= 6; i++ {
		x := 0.1 - float64(i)*0.02
		p.Update(x, 0, 1.0, t0.Add(time.Duration(last+i*20)*time.Millisecond))
	}
	assert.True(t, p.HasDirectionChanged())
}

func TestIsInteractingTimeout(t *testing.T) {
	p := NewPredictor()
	t0 := time.Now()
	p.Update(0, 0, 1.0, t0)
	assert.True(t, p.IsInteracting(t0.Add(50*time.Millisecond)))
	assert.False(t, p.IsInteracting(t0.Add(300*time.Millisecond)))
}

func TestPruneKeepsBoundedHistory(t *testing.T) {
	p := NewPredictor()
	t0 := time.Now()
	for i := 0; i < 30; i++ {
		p.Update(float64(i), 0, 1.0, t0.Add(time.Duration(i)*10*time.Millisecond))
	}
	assert.LessOrEqual(t, len(p.history), historyMaxEntries)
}
