package l3

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// cleanupInterval is the background prune cadence (spec §4.7: "periodic,
// ≈5-minute cadence").
const cleanupInterval = 5 * time.Minute

// targetFraction is the occupancy the cleanup pass prunes down to (spec
// §4.7: "until counts and byte budgets are within 80% of caps").
const targetFraction = 0.80

// RunCleanup runs the periodic prune loop until ctx is cancelled. Call it
// once from the Coordinator's lifetime management.
func (s *DiskStore) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce()
		}
	}
}

func (s *DiskStore) cleanupOnce() {
	s.mu.RLock()
	count := len(s.index)
	bytes := s.totalBytes
	s.mu.RUnlock()

	overCount := count > int(float64(s.countCap)*targetFraction)
	overBytes := bytes > int64(float64(s.bytesCap)*targetFraction)
	if !overCount && !overBytes {
		return
	}

	targetCount := int(float64(s.countCap) * targetFraction)
	toRemove := count - targetCount
	if toRemove <= 0 {
		toRemove = count / 20 // byte pressure without count pressure: trim 5%
	}
	if toRemove <= 0 {
		return
	}

	victims := s.IterOldestK(toRemove)
	for _, k := range victims {
		s.Delete(k)
	}
	logrus.WithFields(logrus.Fields{"removed": len(victims), "remaining": s.Count()}).
		Info("l3: cleanup pass pruned oldest tiles")
}
