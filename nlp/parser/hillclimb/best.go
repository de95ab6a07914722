package hillclimb

import (
	"math"
	"sync"

	"segyap/nlp/types"
)

// bestTracker is shared by the runs of one batch. It keeps the best
// structure found so far and counts the rounds since it last improved.
type bestTracker struct {
	sync.Mutex

	score     float64
	unchanged int
	snapshot  *types.Snapshot

	converge  int
	earlyStop int
	goldScore float64
	training  bool

	metrics *Metrics
}

// newBestTracker starts from inst's current structure with no score, so
// that a batch where no round finishes still returns a structure
func newBestTracker(inst *types.DependencyInstance, converge, earlyStop int, gold bool, goldScore float64) *bestTracker {
	return &bestTracker{
		score:     math.Inf(-1),
		snapshot:  types.CaptureSnapshot(inst),
		converge:  converge,
		earlyStop: earlyStop,
		goldScore: goldScore,
		training:  gold,
	}
}

// offer reports the result of one round and returns whether the caller
// should stop. The stop decision is made on the counters as they stood
// before this round.
func (b *bestTracker) offer(inst *types.DependencyInstance, score float64) bool {
	b.Lock()
	defer b.Unlock()

	done := b.unchanged >= b.converge ||
		(b.training && b.unchanged >= b.earlyStop && b.score >= b.goldScore-Epsilon)

	if score > b.score+Epsilon {
		b.score = score
		b.snapshot.Capture(inst)
		b.metrics.improvement()
		if !done {
			b.unchanged = 0
		}
	} else {
		b.unchanged++
	}
	return done
}

func (b *bestTracker) best() (float64, *types.Snapshot) {
	b.Lock()
	defer b.Unlock()
	return b.score, b.snapshot
}
