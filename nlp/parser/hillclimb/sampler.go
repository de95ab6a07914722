package hillclimb

import (
	"fmt"
	"math/rand/v2"

	"segyap/alg/sampling"
	"segyap/nlp/types"
)

const (
	maxWalkSteps  = 5000
	maxChainSteps = 10000

	// local scores are flattened before sampling segmentations and tags
	resampleScale = 0.5
)

// firstOrderVec lists the candidate heads of m with their arc scores, loss
// augmented against gold when given. With treeConstraint, heads below m are
// left out.
func firstOrderVec(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	m types.HeadIndex, treeConstraint bool) ([]types.HeadIndex, []float64) {
	pruned := fe.IsPruned(pred, cache, m)
	if len(pruned) != pred.NumSegs() {
		panic(fmt.Sprintf("hillclimb: pruning mask of %d for %d segments", len(pruned), pred.NumSegs()))
	}

	ele := pred.Element(m)
	oldDep := ele.Dep
	var (
		candH []types.HeadIndex
		score []float64
	)
	for id, h := range pred.Units() {
		if pruned[id] {
			continue
		}
		if h == m {
			panic(fmt.Sprintf("hillclimb: %v not pruned as its own head", m))
		}
		if treeConstraint && IsAncestor(pred, m, h) {
			continue
		}
		candH = append(candH, h)
		ele.Dep = h
		arcScore := fe.ArcScore(pred, cache, h, m)
		if gold != nil {
			arcScore += fe.Parameters().ElementError(&gold.Word[m.Word], &pred.Word[m.Word], m.Seg)
		}
		score = append(score, arcScore)
	}
	ele.Dep = oldDep
	return candH, score
}

// RandomWalkSampler draws heads for the units flagged in toBeSampled, keeping
// the others fixed, by walking from every unit not yet connected to the root
// until the walk reaches the tree. Heads are drawn from the arc score
// softmax at inverse temperature T among candidates not below the walking
// unit. Since a sampled unit never draws a head below itself, a walk can
// only exceed its step cap by running into held units whose heads form a
// cycle; it then reports false. Child lists are left stale.
func RandomWalkSampler(pred, gold *types.DependencyInstance, fe FeatureExtractor, cache CacheTable,
	toBeSampled []bool, r *rand.Rand, T float64) bool {
	length := len(toBeSampled)
	if length != pred.NumSegs() {
		panic(fmt.Sprintf("hillclimb: %d sample flags for %d segments", length, pred.NumSegs()))
	}

	units := pred.Units()
	inTree := make([]bool, length)
	inTree[0] = true
	for id := 1; id < length; id++ {
		ele := pred.Element(units[id])
		if toBeSampled[id] {
			ele.Dep = types.NoHead
		} else if ele.Dep.IsNone() {
			panic(fmt.Sprintf("hillclimb: fixed unit %v has no head", units[id]))
		}
	}

	for id := 1; id < length; id++ {
		curr, currID := units[id], id
		steps := 0
		for ; !inTree[currID] && steps < maxWalkSteps; steps++ {
			if toBeSampled[currID] {
				candH, score := firstOrderVec(pred, gold, fe, cache, curr, true)
				if len(score) == 0 {
					panic(fmt.Sprintf("hillclimb: no candidate head for %v", curr))
				}
				sampling.Scale(score, T)
				pred.Element(curr).Dep = candH[sampling.SampleScores(score, r)]
			}
			curr = pred.Element(curr).Dep
			currID = pred.WordToSeg(curr)
			if currID < 0 {
				panic(fmt.Sprintf("hillclimb: walk left the sentence at %v", units[id]))
			}
		}
		if steps >= maxWalkSteps {
			return false
		}

		curr, currID = units[id], id
		for steps = 0; !inTree[currID]; steps++ {
			if steps >= maxChainSteps {
				panic(fmt.Sprintf("hillclimb: chain from %v does not reach the tree", units[id]))
			}
			inTree[currID] = true
			curr = pred.Element(curr).Dep
			currID = pred.WordToSeg(curr)
		}
	}
	return true
}

// sampleAll flags every non-root unit for sampling
func sampleAll(inst *types.DependencyInstance) []bool {
	toBeSampled := make([]bool, inst.NumSegs())
	for id := 1; id < len(toBeSampled); id++ {
		toBeSampled[id] = true
	}
	return toBeSampled
}

// SampleSeg1O redraws the segmentation of a word from its segmentation
// scores and detaches every unit governed by the word. The flat index must
// be rebuilt afterwards. It returns the probability of the drawn
// segmentation.
func SampleSeg1O(pred, gold *types.DependencyInstance, fe FeatureExtractor, word int, r *rand.Rand) float64 {
	w := &pred.Word[word]
	oldSeg := w.CurrSeg
	probList := make([]float64, len(w.CandSeg))
	for i := range w.CandSeg {
		w.CurrSeg = i
		probList[i] = fe.SegScore(pred, word)
		if gold != nil {
			goldWord := &gold.Word[word]
			if i != goldWord.CurrSeg {
				probList[i] += float64(w.Seg().Size() + goldWord.Seg().Size())
			}
		}
	}
	w.CurrSeg = oldSeg

	sampling.Scale(probList, resampleScale)
	sampling.ConvertScoreToProb(probList)
	sample := sampling.SamplePoint(probList, r)
	pred.UpdateSeg(word, sample)

	for i := range pred.Word {
		seg := pred.Word[i].Seg()
		for j := range seg.Element {
			if i == word || seg.Element[j].Dep.Word == word {
				seg.Element[j].Dep = types.NoHead
			}
		}
	}
	return probList[sample]
}

// SamplePos1O redraws the POS of every element of a word and detaches the
// elements. It returns the probability of the drawn tags.
func SamplePos1O(pred, gold *types.DependencyInstance, fe FeatureExtractor, word int, r *rand.Rand) float64 {
	w := &pred.Word[word]
	seg := w.Seg()
	prob := 1.0
	for i := range seg.Element {
		m := types.HeadIndex{Word: word, Seg: i}
		ele := &seg.Element[i]
		probList := make([]float64, ele.CandPosNum())
		for j := range probList {
			ele.CurrPos = j
			probList[j] = fe.PosScore(pred, m)
			if gold != nil && w.CurrSeg == gold.Word[word].CurrSeg &&
				j != gold.Word[word].Seg().Element[i].CurrPos {
				probList[j] += 1.0
			}
		}
		sampling.Scale(probList, resampleScale)
		sampling.ConvertScoreToProb(probList)
		ele.CurrPos = sampling.SamplePoint(probList, r)
		prob *= probList[ele.CurrPos]
	}
	w.SetOptPosCount()

	for i := range seg.Element {
		seg.Element[i].Dep = types.NoHead
	}
	return prob
}

// InitInst resets inst to the first segmentation and POS candidates. With a
// caching extractor the tree is drawn by the random walk sampler, halving
// the temperature on failure; otherwise every unit is attached to the root.
// All units are sampled here, so the halving is a guard against extractors
// whose pruning breaks the walk rather than an expected path.
func InitInst(inst *types.DependencyInstance, fe FeatureExtractor, opts Options) {
	for i := range inst.Word {
		w := &inst.Word[i]
		for j := range w.CandSeg {
			for k := range w.CandSeg[j].Element {
				e := &w.CandSeg[j].Element[k]
				e.Label = types.NoLabel
				if i == 0 {
					e.Dep = types.NoHead
				} else {
					e.Dep = types.Root
				}
			}
		}
		w.CurrSeg = 0
		seg := w.Seg()
		for j := range seg.Element {
			seg.Element[j].CurrPos = 0
		}
	}
	inst.ConstructConversionList()
	inst.SetOptSegPosCount()

	if cache := fe.CacheTable(inst); cache != nil {
		r := rand.New(rand.NewPCG(0, 0))
		toBeSampled := sampleAll(inst)
		T := opts.InitTemperature
		halvings := 0
		for !RandomWalkSampler(inst, nil, fe, cache, toBeSampled, r, T) {
			if halvings >= opts.MaxHalvings {
				panic(fmt.Errorf("%w: last temperature %g", ErrSamplerExhausted, T))
			}
			T *= 0.5
			halvings++
		}
	}
	inst.BuildChild()
}

// SetGoldSegAndPos copies the segmentation and tags of gold into pred and
// detaches all of pred's units
func SetGoldSegAndPos(pred, gold *types.DependencyInstance) {
	for i := 1; i < len(pred.Word); i++ {
		pred.Word[i].CurrSeg = gold.Word[i].CurrSeg
		seg := pred.Word[i].Seg()
		goldSeg := gold.Word[i].Seg()
		for j := range seg.Element {
			seg.Element[j].CurrPos = goldSeg.Element[j].CurrPos
			seg.Element[j].Dep = types.NoHead
		}
	}
	pred.ConstructConversionList()
	pred.SetOptSegPosCount()
	pred.BuildChild()
}
