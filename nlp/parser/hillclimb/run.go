package hillclimb

import (
	"log/slog"
	"math/rand/v2"

	"segyap/nlp/types"
)

const (
	maxOuterLoops = 20
	maxInnerLoops = 20
)

// run performs the rounds of one worker for one batch: resample the
// segmentation and tags, draw a tree, climb to a local optimum and report
// the result to the batch's best tracker.
func (d *HillClimbing) run(worker int, t *task) {
	pred := t.pred.Copy()
	gold := t.gold
	fe := t.fe
	r := rand.New(rand.NewPCG(d.opts.Seed+2+uint64(worker), d.opts.Seed))
	log := d.Log.With("batch", t.id, "worker", worker)

	T := d.opts.Temperature
	done := false
	for iter := 0; iter < d.opts.MaxIter && !done; iter++ {
		if t.sampleSeg {
			for i := 1; i < pred.NumWord(); i++ {
				SampleSeg1O(pred, gold, fe, i, r)
			}
			pred.ConstructConversionList()
		}
		if t.samplePos {
			for i := 1; i < pred.NumWord(); i++ {
				SamplePos1O(pred, gold, fe, i, r)
			}
		}

		cache := fe.CacheTable(pred)
		// every unit is sampled, so a failed walk points at corrupt heads
		if !RandomWalkSampler(pred, gold, fe, cache, sampleAll(pred), r, T) {
			d.Metrics.samplerFailure()
			log.Debug("random walk failed", "iter", iter, "temperature", T)
			T *= 0.5
			continue
		}
		pred.BuildChild()

		cache = d.climb(pred, t, cache, log)

		score := fe.Score(pred, cache)
		if gold != nil {
			for i := 1; i < pred.NumWord(); i++ {
				score += fe.Parameters().WordDepError(&gold.Word[i], &pred.Word[i])
			}
		}
		d.Metrics.run()
		done = t.best.offer(pred, score)
		if d.onRound != nil {
			best, _ := t.best.best()
			d.onRound(worker, score, best)
		}
	}
}

// climb alternates the local search passes until none of them changes the
// structure and returns the cache valid for the final structure
func (d *HillClimbing) climb(pred *types.DependencyInstance, t *task, cache CacheTable, log *slog.Logger) CacheTable {
	gold, fe := t.gold, t.fe
	outChange := true
	outLoop := 0
	for ; outChange && outLoop < maxOuterLoops; outLoop++ {
		outChange = false

		change := true
		loop := 0
		for ; change && loop < maxInnerLoops; loop++ {
			change = false

			for _, m := range BottomUpOrder(pred) {
				delta := FindOptHead(pred, gold, fe, cache, m, d.opts.Projective)
				assertGain(delta)
				if delta > Epsilon {
					change = true
					outChange = true
				}
			}

			for _, m := range BottomUpOrder(pred) {
				mIndex := pred.WordToSeg(m)
				if mIndex+1 >= pred.NumSegs() {
					continue
				}
				n := pred.SegToWord(mIndex + 1)
				if pred.Element(m).Dep != pred.Element(n).Dep {
					continue
				}
				delta := FindOptBigramHead(pred, gold, fe, cache, m, n, d.opts.Projective)
				assertGain(delta)
				if delta > Epsilon {
					change = true
					outChange = true
				}
			}
		}
		if change {
			d.Metrics.capOverrun("inner")
			log.Warn("head moves did not converge", "loops", loop)
		}

		if t.samplePos {
			for _, m := range BottomUpOrder(pred) {
				var delta float64
				delta, cache = FindOptPos(pred, gold, fe, cache, m, d.opts.PosFloor)
				assertGain(delta)
				if delta > Epsilon {
					outChange = true
				}
			}
		}

		if t.sampleSeg && d.opts.SegSearch {
			for i := 1; i < pred.NumWord(); i++ {
				var delta float64
				delta, cache = FindOptSeg(pred, gold, fe, cache, i)
				assertGain(delta)
				if delta > Epsilon {
					outChange = true
				}
			}
		}
	}
	if outChange {
		d.Metrics.capOverrun("outer")
		log.Warn("local search did not converge", "loops", outLoop)
	}
	return cache
}

func assertGain(delta float64) {
	if delta < -Epsilon {
		panic("hillclimb: local move decreased the score")
	}
}
