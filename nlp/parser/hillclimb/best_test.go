package hillclimb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segyap/nlp/types"
)

func TestBestTrackerConverges(t *testing.T) {
	inst := simple("a", "b")
	b := newBestTracker(inst, 3, 1, false, 0)

	assert.False(t, b.offer(inst, 1.0))
	assert.False(t, b.offer(inst, 1.0+Epsilon/2), "within epsilon is no improvement")
	assert.False(t, b.offer(inst, 0.5))
	assert.False(t, b.offer(inst, 0.5))
	assert.True(t, b.offer(inst, 0.5), "three rounds without improvement")

	score, _ := b.best()
	assert.Equal(t, 1.0, score)
}

func TestBestTrackerKeepsBestStructure(t *testing.T) {
	inst := simple("a", "b")
	b := newBestTracker(inst, 10, 1, false, 0)

	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(2, 0): hi(1, 0)})
	b.offer(inst, 2.0)
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(2, 0): types.Root})
	b.offer(inst, 1.0)

	out := simple("a", "b")
	_, snap := b.best()
	snap.Restore(out)
	assert.Equal(t, hi(1, 0), out.Element(hi(2, 0)).Dep)
	require.NoError(t, out.CheckTree())
}

func TestBestTrackerEarlyStopOnlyWhenGoldReached(t *testing.T) {
	inst := simple("a")
	b := newBestTracker(inst, 100, 2, true, 5.0)
	b.offer(inst, 4.0)
	b.offer(inst, 4.0)
	b.offer(inst, 4.0)
	assert.False(t, b.offer(inst, 4.0), "best is below the gold score")

	b = newBestTracker(inst, 100, 2, true, 5.0)
	b.offer(inst, 5.0)
	b.offer(inst, 5.0)
	b.offer(inst, 5.0)
	assert.True(t, b.offer(inst, 5.0))

	b = newBestTracker(inst, 100, 2, false, 5.0)
	b.offer(inst, 5.0)
	b.offer(inst, 5.0)
	b.offer(inst, 5.0)
	assert.False(t, b.offer(inst, 5.0), "no early stop while decoding")
}

func TestBestTrackerImprovementAfterDoneKeepsCounter(t *testing.T) {
	inst := simple("a")
	b := newBestTracker(inst, 2, 0, false, 0)
	b.offer(inst, 1.0)
	b.offer(inst, 1.0)
	b.offer(inst, 1.0)
	assert.True(t, b.offer(inst, 3.0), "the decision uses the counter before this round")
	assert.True(t, b.offer(inst, 0.0), "a late improvement does not reopen the search")
	score, _ := b.best()
	assert.Equal(t, 3.0, score)
}
