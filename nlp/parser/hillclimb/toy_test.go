package hillclimb

import (
	"fmt"
	"sync"

	"segyap/alg/featurevector"
	"segyap/nlp/types"
)

// toyParams is a plain weight map with the usual task losses
type toyParams struct {
	sync.Mutex
	weights featurevector.Sparse
	updates []toyUpdate
}

type toyUpdate struct {
	loss        float64
	updateTimes int
}

func newToyParams() *toyParams {
	return &toyParams{weights: featurevector.NewSparse()}
}

func (p *toyParams) Score(fv featurevector.Sparse) float64 {
	p.Lock()
	defer p.Unlock()
	return p.weights.DotProduct(fv)
}

func (p *toyParams) WordError(gold, pred *types.WordInstance) float64 {
	if gold.CurrSeg != pred.CurrSeg {
		return float64(gold.Seg().Size() + pred.Seg().Size())
	}
	err := 0.0
	for i := range pred.Seg().Element {
		g, e := &gold.Seg().Element[i], &pred.Seg().Element[i]
		if g.CurrPos != e.CurrPos {
			err++
		}
		if g.Dep != e.Dep {
			err++
		}
	}
	return err
}

func (p *toyParams) WordDepError(gold, pred *types.WordInstance) float64 {
	if gold.CurrSeg != pred.CurrSeg {
		return float64(gold.Seg().Size() + pred.Seg().Size())
	}
	err := 0.0
	for i := range pred.Seg().Element {
		if gold.Seg().Element[i].Dep != pred.Seg().Element[i].Dep {
			err++
		}
	}
	return err
}

func (p *toyParams) ElementError(gold, pred *types.WordInstance, seg int) float64 {
	if gold.CurrSeg != pred.CurrSeg || gold.Seg().Element[seg].Dep != pred.Seg().Element[seg].Dep {
		return 1
	}
	return 0
}

func (p *toyParams) Update(gold, pred *types.DependencyInstance, diff featurevector.Sparse, loss float64, updateTimes int) {
	p.Lock()
	defer p.Unlock()
	p.weights.UpdateAdd(diff)
	p.updates = append(p.updates, toyUpdate{loss, updateTimes})
}

type toyCache struct{ numSeg int }

func (c *toyCache) NumSeg() int { return c.numSeg }

// toyExtractor scores arcs, tags and segmentations by form; every partial
// score is the full score, so deltas are exact
type toyExtractor struct {
	params    *toyParams
	withCache bool
	// optional extra pruning, by head and modifier
	prune func(h, m types.HeadIndex) bool
}

func newToy(withCache bool) *toyExtractor {
	return &toyExtractor{params: newToyParams(), withCache: withCache}
}

func (fe *toyExtractor) set(feature string, w float64) *toyExtractor {
	fe.params.weights[featurevector.Feature(feature)] = w
	return fe
}

func arcFeature(h, m string) string { return fmt.Sprintf("arc:%s>%s", h, m) }

func (fe *toyExtractor) Parameters() Parameters { return fe.params }

func (fe *toyExtractor) CacheTable(inst *types.DependencyInstance) CacheTable {
	if !fe.withCache {
		return nil
	}
	return &toyCache{numSeg: inst.NumSegs()}
}

func (fe *toyExtractor) ArcScore(inst *types.DependencyInstance, cache CacheTable, h, m types.HeadIndex) float64 {
	return fe.params.Score(featurevector.Sparse{
		featurevector.Feature(arcFeature(inst.Element(h).Form, inst.Element(m).Form)): 1,
	})
}

func (fe *toyExtractor) PartialDepScore(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) float64 {
	return fe.Score(inst, cache)
}

func (fe *toyExtractor) PartialBigramDepScore(inst *types.DependencyInstance, cache CacheTable, m, n types.HeadIndex) float64 {
	return fe.Score(inst, cache)
}

func (fe *toyExtractor) PartialPosScore(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) float64 {
	return fe.Score(inst, cache)
}

func (fe *toyExtractor) PosScore(inst *types.DependencyInstance, m types.HeadIndex) float64 {
	e := inst.Element(m)
	return fe.params.Score(featurevector.Sparse{featurevector.Feature("pos:" + e.Form + ":" + e.Pos()): 1})
}

func (fe *toyExtractor) SegScore(inst *types.DependencyInstance, word int) float64 {
	return fe.params.Score(featurevector.Sparse{featurevector.Feature("seg:" + inst.Word[word].Seg().Signature()): 1})
}

func (fe *toyExtractor) Score(inst *types.DependencyInstance, cache CacheTable) float64 {
	return fe.params.Score(fe.Features(inst))
}

func (fe *toyExtractor) Features(inst *types.DependencyInstance) featurevector.Sparse {
	fv := featurevector.NewSparse()
	for i := 1; i < inst.NumWord(); i++ {
		fv.Inc(featurevector.Feature("seg:"+inst.Word[i].Seg().Signature()), 1)
	}
	for _, m := range inst.Units()[1:] {
		e := inst.Element(m)
		fv.Inc(featurevector.Feature("pos:"+e.Form+":"+e.Pos()), 1)
		if !e.Dep.IsNone() {
			fv.Inc(featurevector.Feature(arcFeature(inst.Element(e.Dep).Form, e.Form)), 1)
		}
	}
	return fv
}

func (fe *toyExtractor) IsPruned(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) []bool {
	pruned := make([]bool, inst.NumSegs())
	for id, h := range inst.Units() {
		pruned[id] = h == m || (fe.prune != nil && fe.prune(h, m))
	}
	return pruned
}

// word builds a token from candidate segmentations given as element forms;
// every element gets the POS candidates listed in tags
func word(form string, tags []string, segs ...[]string) types.WordInstance {
	w := types.WordInstance{Form: form}
	for _, forms := range segs {
		seg := types.SegInstance{InNode: -1, OutNode: -1, DetNode: -1}
		for _, f := range forms {
			e := types.SegElement{Form: f, Lemma: f, CandPos: tags}
			for i := range tags {
				e.CandPosID = append(e.CandPosID, i)
				e.CandProb = append(e.CandProb, -float64(i))
			}
			seg.Element = append(seg.Element, e)
		}
		w.CandSeg = append(w.CandSeg, seg)
	}
	return w
}

func simple(forms ...string) *types.DependencyInstance {
	words := make([]types.WordInstance, len(forms))
	for i, f := range forms {
		words[i] = word(f, []string{"NN"}, []string{f})
	}
	return types.NewInstance(words...)
}

func attach(inst *types.DependencyInstance, deps map[types.HeadIndex]types.HeadIndex) {
	for m, h := range deps {
		inst.Element(m).Dep = h
	}
	inst.BuildChild()
}

func hi(w, s int) types.HeadIndex { return types.HeadIndex{Word: w, Seg: s} }
