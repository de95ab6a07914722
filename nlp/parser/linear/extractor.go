// Package linear is a first and second order linear model over joint
// segmentation, tagging and dependency structures, usable as the feature
// extractor and parameters of the hill climbing decoder.
package linear

import (
	"slices"

	"segyap/alg/featurevector"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/types"
)

// Cache memoizes arc scores for one segmentation and tag assignment
type Cache struct {
	numSeg int
	arcs   []float64
	known  []bool
}

var _ hillclimb.CacheTable = &Cache{}

func NewCache(numSeg int) *Cache {
	return &Cache{
		numSeg: numSeg,
		arcs:   make([]float64, numSeg*numSeg),
		known:  make([]bool, numSeg*numSeg),
	}
}

func (c *Cache) NumSeg() int {
	return c.numSeg
}

// Extractor scores structures as a sum of factors: a segmentation factor
// per word, tag and tag bigram factors per element, and arc, grandparent and
// consecutive sibling factors per attachment.
type Extractor struct {
	Params *Params
	Opts   Options
}

var _ hillclimb.FeatureExtractor = &Extractor{}

func NewExtractor(params *Params, opts Options) *Extractor {
	return &Extractor{Params: params, Opts: opts}
}

// accumulator sums the weights of emitted features
type accumulator struct {
	params *Params
	score  float64
}

func (a *accumulator) emit(f featurevector.Feature, v float64) {
	a.score += a.params.Weight(f) * v
}

func (x *Extractor) acc() *accumulator {
	return &accumulator{params: x.Params}
}

func (x *Extractor) Parameters() hillclimb.Parameters {
	return x.Params
}

func (x *Extractor) CacheTable(inst *types.DependencyInstance) hillclimb.CacheTable {
	return NewCache(inst.NumSegs())
}

func (x *Extractor) arcScore(inst *types.DependencyInstance, h, m types.HeadIndex) float64 {
	a := x.acc()
	arcFeatures(inst, h, m, a.emit)
	return a.score
}

func (x *Extractor) ArcScore(inst *types.DependencyInstance, cache hillclimb.CacheTable, h, m types.HeadIndex) float64 {
	c, ok := cache.(*Cache)
	if !ok || c == nil || c.numSeg != inst.NumSegs() {
		return x.arcScore(inst, h, m)
	}
	k := inst.WordToSeg(h)*c.numSeg + inst.WordToSeg(m)
	if !c.known[k] {
		c.arcs[k] = x.arcScore(inst, h, m)
		c.known[k] = true
	}
	return c.arcs[k]
}

// chain scores the consecutive sibling factors of h's children, leaving out
// the units in skip
func (x *Extractor) chain(inst *types.DependencyInstance, h types.HeadIndex, skip ...types.HeadIndex) float64 {
	a := x.acc()
	prev := types.NoHead
	for _, c := range inst.Element(h).Child {
		if slices.Contains(skip, c) {
			continue
		}
		siblingFeatures(inst, h, prev, c, a.emit)
		prev = c
	}
	return a.score
}

// siblingGain is what the units contribute to the sibling factors of h
func (x *Extractor) siblingGain(inst *types.DependencyInstance, h types.HeadIndex, units ...types.HeadIndex) float64 {
	if !x.Opts.Siblings || h.IsNone() {
		return 0
	}
	return x.chain(inst, h) - x.chain(inst, h, units...)
}

// attachment scores the factors that depend on m's head other than the
// sibling factors
func (x *Extractor) attachment(inst *types.DependencyInstance, cache hillclimb.CacheTable, m types.HeadIndex) float64 {
	e := inst.Element(m)
	h := e.Dep
	if h.IsNone() {
		return 0
	}
	score := x.ArcScore(inst, cache, h, m)
	if x.Opts.Grandparents {
		a := x.acc()
		if g := inst.Element(h).Dep; !g.IsNone() {
			grandparentFeatures(inst, g, h, m, a.emit)
		}
		for _, c := range e.Child {
			grandparentFeatures(inst, h, m, c, a.emit)
		}
		score += a.score
	}
	return score
}

func (x *Extractor) PartialDepScore(inst *types.DependencyInstance, cache hillclimb.CacheTable, m types.HeadIndex) float64 {
	return x.attachment(inst, cache, m) + x.siblingGain(inst, inst.Element(m).Dep, m)
}

func (x *Extractor) PartialBigramDepScore(inst *types.DependencyInstance, cache hillclimb.CacheTable, m, n types.HeadIndex) float64 {
	score := x.attachment(inst, cache, m) + x.attachment(inst, cache, n)
	hm, hn := inst.Element(m).Dep, inst.Element(n).Dep
	if hm == hn {
		return score + x.siblingGain(inst, hm, m, n)
	}
	return score + x.siblingGain(inst, hm, m) + x.siblingGain(inst, hn, n)
}

// PartialPosScore sums every factor that reads the tag of m
func (x *Extractor) PartialPosScore(inst *types.DependencyInstance, cache hillclimb.CacheTable, m types.HeadIndex) float64 {
	e := inst.Element(m)
	h := e.Dep
	score := x.PosScore(inst, m)
	if !h.IsNone() {
		score += x.ArcScore(inst, cache, h, m)
	}
	for _, c := range e.Child {
		score += x.ArcScore(inst, cache, m, c)
	}
	if x.Opts.Siblings {
		if !h.IsNone() {
			score += x.chain(inst, h)
		}
		score += x.chain(inst, m)
	}
	if x.Opts.Grandparents {
		a := x.acc()
		if !h.IsNone() {
			if g := inst.Element(h).Dep; !g.IsNone() {
				grandparentFeatures(inst, g, h, m, a.emit)
			}
			for _, c := range e.Child {
				grandparentFeatures(inst, h, m, c, a.emit)
			}
		}
		for _, c := range e.Child {
			for _, cc := range inst.Element(c).Child {
				grandparentFeatures(inst, m, c, cc, a.emit)
			}
		}
		score += a.score
	}
	return score
}

// PosScore is the tag factor of m with both tag bigrams around it
func (x *Extractor) PosScore(inst *types.DependencyInstance, m types.HeadIndex) float64 {
	if !x.Opts.SegPos {
		return 0
	}
	a := x.acc()
	posFeatures(inst, m, a.emit)
	id := inst.WordToSeg(m)
	if id > 0 {
		bigramFeatures(inst, id, a.emit)
	}
	if id+1 < inst.NumSegs() {
		bigramFeatures(inst, id+1, a.emit)
	}
	return a.score
}

func (x *Extractor) SegScore(inst *types.DependencyInstance, word int) float64 {
	if !x.Opts.SegPos {
		return 0
	}
	a := x.acc()
	segFeatures(inst, word, a.emit)
	return a.score
}

// walk emits the features of every factor of inst, handing arcs to arc
func (x *Extractor) walk(inst *types.DependencyInstance, emit emitter, arc func(h, m types.HeadIndex)) {
	if x.Opts.SegPos {
		for i := 1; i < inst.NumWord(); i++ {
			segFeatures(inst, i, emit)
		}
	}
	for id, m := range inst.Units() {
		if id == 0 {
			continue
		}
		if x.Opts.SegPos {
			posFeatures(inst, m, emit)
			bigramFeatures(inst, id, emit)
		}
		h := inst.Element(m).Dep
		if h.IsNone() {
			continue
		}
		arc(h, m)
		if x.Opts.Grandparents {
			if g := inst.Element(h).Dep; !g.IsNone() {
				grandparentFeatures(inst, g, h, m, emit)
			}
		}
	}
	if x.Opts.Siblings {
		for _, h := range inst.Units() {
			prev := types.NoHead
			for _, c := range inst.Element(h).Child {
				siblingFeatures(inst, h, prev, c, emit)
				prev = c
			}
		}
	}
}

func (x *Extractor) Score(inst *types.DependencyInstance, cache hillclimb.CacheTable) float64 {
	a := x.acc()
	x.walk(inst, a.emit, func(h, m types.HeadIndex) {
		a.score += x.ArcScore(inst, cache, h, m)
	})
	return a.score
}

func (x *Extractor) Features(inst *types.DependencyInstance) featurevector.Sparse {
	fv := featurevector.NewSparse()
	emit := func(f featurevector.Feature, v float64) { fv.Inc(f, v) }
	x.walk(inst, emit, func(h, m types.HeadIndex) {
		arcFeatures(inst, h, m, emit)
	})
	return fv
}

// IsPruned rules out m itself and, when a maximal head distance is set,
// every head but the root further away than it
func (x *Extractor) IsPruned(inst *types.DependencyInstance, cache hillclimb.CacheTable, m types.HeadIndex) []bool {
	pruned := make([]bool, inst.NumSegs())
	for id, h := range inst.Units() {
		pruned[id] = h == m ||
			(x.Opts.MaxHeadDist > 0 && h != types.Root && inst.SegDist(h, m) > x.Opts.MaxHeadDist)
	}
	return pruned
}
