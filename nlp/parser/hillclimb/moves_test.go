package hillclimb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segyap/nlp/types"
)

func TestFindOptHead(t *testing.T) {
	inst := simple("a", "b", "c")
	fe := newToy(false).set(arcFeature("c", "a"), 2).set(arcFeature("b", "a"), 1)

	delta := FindOptHead(inst, nil, fe, nil, hi(1, 0), false)
	assert.InDelta(t, 2.0, delta, 1e-9)
	assert.Equal(t, hi(3, 0), inst.Element(hi(1, 0)).Dep)
	require.NoError(t, inst.CheckTree())

	assert.Zero(t, FindOptHead(inst, nil, fe, nil, hi(1, 0), false), "a local optimum stays put")
	assert.Equal(t, hi(3, 0), inst.Element(hi(1, 0)).Dep)
}

func TestFindOptHeadAvoidsCycles(t *testing.T) {
	inst := simple("a", "b")
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(2, 0): hi(1, 0)})
	fe := newToy(false).set(arcFeature("b", "a"), 10)

	assert.Zero(t, FindOptHead(inst, nil, fe, nil, hi(1, 0), false))
	assert.Equal(t, types.Root, inst.Element(hi(1, 0)).Dep)
	assert.NoError(t, inst.CheckTree())
}

func TestFindOptHeadTiesKeepCurrent(t *testing.T) {
	inst := simple("a", "b", "c")
	fe := newToy(false).set(arcFeature("b", "c"), 1).set(arcFeature("a", "c"), 1)
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(3, 0): hi(2, 0)})

	assert.Zero(t, FindOptHead(inst, nil, fe, nil, hi(3, 0), false))
	assert.Equal(t, hi(2, 0), inst.Element(hi(3, 0)).Dep)
}

func TestFindOptHeadProjective(t *testing.T) {
	// root -> a -> c, b hangs from the root; d prefers b
	inst := simple("a", "b", "c", "d")
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(3, 0): hi(1, 0), hi(4, 0): hi(1, 0)})
	fe := newToy(false).set(arcFeature("b", "d"), 1)

	cp := inst.Copy()
	FindOptHead(cp, nil, fe, nil, hi(4, 0), true)
	assert.Equal(t, hi(1, 0), cp.Element(hi(4, 0)).Dep, "b -> d would cross a -> c")

	FindOptHead(inst, nil, fe, nil, hi(4, 0), false)
	assert.Equal(t, hi(2, 0), inst.Element(hi(4, 0)).Dep)
}

func TestFindOptHeadLossAugmented(t *testing.T) {
	gold := simple("a", "b")
	pred := simple("a", "b")
	fe := newToy(false)

	// with no weights the loss alone decides: move away from the gold head
	delta := FindOptHead(pred, gold, fe, nil, hi(2, 0), false)
	assert.InDelta(t, 1.0, delta, 1e-9)
	assert.Equal(t, hi(1, 0), pred.Element(hi(2, 0)).Dep)
}

func TestFindOptBigramHead(t *testing.T) {
	inst := simple("a", "b", "c")
	fe := newToy(false).
		set(arcFeature("a", "b"), 3).
		set(arcFeature("a", "c"), 3)

	delta := FindOptBigramHead(inst, nil, fe, nil, hi(2, 0), hi(3, 0), false)
	assert.InDelta(t, 6.0, delta, 1e-9)
	assert.Equal(t, hi(1, 0), inst.Element(hi(2, 0)).Dep)
	assert.Equal(t, hi(1, 0), inst.Element(hi(3, 0)).Dep)
	assert.NoError(t, inst.CheckTree())

	assert.Panics(t, func() {
		inst.Element(hi(3, 0)).Dep = types.Root
		inst.BuildChild()
		FindOptBigramHead(inst, nil, fe, nil, hi(2, 0), hi(3, 0), false)
	})
}

func TestFindOptPos(t *testing.T) {
	inst := types.NewInstance(word("a", []string{"NN", "VB", "JJ"}, []string{"a"}))
	inst.Element(hi(1, 0)).CandProb[2] = -20
	fe := newToy(true).set("pos:a:VB", 1).set("pos:a:JJ", 5)

	delta, cache := FindOptPos(inst, nil, fe, fe.CacheTable(inst), hi(1, 0), -15)
	assert.InDelta(t, 1.0, delta, 1e-9)
	assert.Equal(t, "VB", inst.Element(hi(1, 0)).Pos(), "JJ is below the floor")
	assert.Equal(t, 0, inst.Word[1].OptPosCount)
	assert.Equal(t, inst.NumSegs(), cache.NumSeg())
}

// segWord is a word with one segmentation of a single element and one of
// two elements
func segWord() types.WordInstance {
	return word("ab", []string{"NN", "VB"}, []string{"ab"}, []string{"a", "b"})
}

func TestSegChangeRemapsDependent(t *testing.T) {
	inst := types.NewInstance(segWord(), word("c", []string{"NN"}, []string{"c"}))
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(2, 0): hi(1, 0)})
	inst.Word[1].UpdatePos(0, 1)

	state := captureSeg(inst, 1)
	state.apply(inst, 1)

	w := &inst.Word[1]
	k := w.MapIndex(0, 1)
	require.Equal(t, 1, w.CurrSeg)
	assert.Equal(t, hi(1, w.OutMap[k][0]), inst.Element(hi(2, 0)).Dep, "dependent follows the out map")
	assert.Contains(t, inst.Element(hi(1, w.OutMap[k][0])).Child, hi(2, 0))
	assert.Equal(t, 4, inst.NumSegs())
	for j := 0; j < 2; j++ {
		assert.Equal(t, "VB", inst.Element(hi(1, j)).Pos(), "tag carried to element %d", j)
	}
	assert.True(t, state.isTree(inst), "both new elements inherit the root head")
	assert.NoError(t, inst.CheckTree())
}

func TestSegChangeRoundTrip(t *testing.T) {
	inst := types.NewInstance(segWord(), word("c", []string{"NN"}, []string{"c"}))
	inst.UpdateSeg(1, 1)
	inst.ConstructConversionList()
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(1, 0): hi(1, 1), hi(2, 0): hi(1, 0)})
	require.NoError(t, inst.CheckTree())
	before := types.CaptureSnapshot(inst)

	state := captureSeg(inst, 1)
	state.apply(inst, 0)
	require.True(t, state.isTree(inst))
	assert.Equal(t, types.Root, inst.Element(hi(1, 0)).Dep)
	assert.Equal(t, hi(1, 0), inst.Element(hi(2, 0)).Dep)
	require.NoError(t, inst.CheckTree())

	state.apply(inst, 1)
	after := types.CaptureSnapshot(inst)
	assert.Equal(t, before, after)
}

func TestFindOptSeg(t *testing.T) {
	inst := types.NewInstance(segWord(), word("c", []string{"NN"}, []string{"c"}))
	inst.UpdateSeg(1, 1)
	inst.ConstructConversionList()
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(1, 0): hi(1, 1), hi(2, 0): hi(1, 0)})
	fe := newToy(true).set("seg:ab", 4)

	delta, cache := FindOptSeg(inst, nil, fe, fe.CacheTable(inst), 1)
	assert.InDelta(t, 4.0, delta, 1e-9)
	assert.Equal(t, 0, inst.Word[1].CurrSeg)
	assert.Equal(t, 3, cache.NumSeg())
	assert.NoError(t, inst.CheckTree())

	fe.set("seg:ab", 0)
	delta, _ = FindOptSeg(inst, nil, fe, fe.CacheTable(inst), 1)
	assert.Zero(t, delta, "a tie is no gain")
	assert.Equal(t, 0, inst.Word[1].CurrSeg)
}

func TestFindOptSegAttachmentLoss(t *testing.T) {
	gold := types.NewInstance(segWord(), word("c", []string{"NN"}, []string{"c"}))
	attach(gold, map[types.HeadIndex]types.HeadIndex{hi(1, 0): types.Root, hi(2, 0): hi(1, 0)})
	gold.Word[1].UpdatePos(0, 1)
	pred := gold.Copy()
	pred.Word[1].UpdatePos(0, 0)
	fe := newToy(true).set("seg:ab", 2.5)

	// staying costs no attachment loss despite the tag error; splitting
	// loses 2.5 of score and gains a loss of 3
	delta, _ := FindOptSeg(pred, gold, fe, fe.CacheTable(pred), 1)
	assert.InDelta(t, 0.5, delta, 1e-9)
	assert.Equal(t, 1, pred.Word[1].CurrSeg)
	assert.NoError(t, pred.CheckTree())
}

func TestFindOptSegSkipsCyclicCarryOver(t *testing.T) {
	// merging a and b would put ab under c while c stays under ab
	inst := types.NewInstance(segWord(), word("c", []string{"NN"}, []string{"c"}))
	inst.UpdateSeg(1, 1)
	inst.ConstructConversionList()
	attach(inst, map[types.HeadIndex]types.HeadIndex{hi(1, 1): hi(2, 0), hi(2, 0): hi(1, 0)})
	require.NoError(t, inst.CheckTree())
	fe := newToy(false).set("seg:ab", 10)

	delta, _ := FindOptSeg(inst, nil, fe, nil, 1)
	assert.Zero(t, delta)
	assert.Equal(t, 1, inst.Word[1].CurrSeg)
	assert.Equal(t, hi(2, 0), inst.Element(hi(1, 1)).Dep)
	assert.NoError(t, inst.CheckTree())
}
