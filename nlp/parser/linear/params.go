package linear

import (
	"context"
	"log/slog"

	"segyap/alg/featurevector"
	"segyap/alg/perceptron"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/types"
)

// Params is the weight vector of the linear model, trained online by a
// passive aggressive learner, together with the task losses.
type Params struct {
	Model *perceptron.PassiveAggressive
	Log   *slog.Logger
}

var _ hillclimb.Parameters = &Params{}

func NewParams(opts Options) *Params {
	var strategy perceptron.UpdateStrategy = &perceptron.TrivialStrategy{}
	if opts.Averaged {
		strategy = &perceptron.AveragedStrategy{}
	}
	return &Params{
		Model: perceptron.NewPassiveAggressive(opts.C, strategy),
		Log:   slog.Default(),
	}
}

// NewPriorParams is an untrained model that trusts only the tag
// probabilities of the lattice
func NewPriorParams(opts Options) *Params {
	p := NewParams(opts)
	p.Model.Weights.UpdateScaledAdd(0, featurevector.Sparse{featurevector.Feature(ProbFeature): 1}, 1.0)
	return p
}

func (p *Params) Weight(f featurevector.Feature) float64 {
	return p.Model.Weights.Value(f)
}

func (p *Params) Score(fv featurevector.Sparse) float64 {
	return p.Model.Score(fv)
}

// WordError counts every element of both segmentations when they differ,
// otherwise the tag and head mismatches
func (p *Params) WordError(gold, pred *types.WordInstance) float64 {
	return wordError(gold, pred, true)
}

func (p *Params) WordDepError(gold, pred *types.WordInstance) float64 {
	return wordError(gold, pred, false)
}

func (p *Params) ElementError(gold, pred *types.WordInstance, seg int) float64 {
	if gold.CurrSeg != pred.CurrSeg {
		return 1
	}
	if gold.Seg().Element[seg].Dep != pred.Seg().Element[seg].Dep {
		return 1
	}
	return 0
}

func wordError(gold, pred *types.WordInstance, withPos bool) float64 {
	if gold.CurrSeg != pred.CurrSeg {
		return float64(gold.Seg().Size() + pred.Seg().Size())
	}
	var err float64
	goldSeg, predSeg := gold.Seg(), pred.Seg()
	for i := range predSeg.Element {
		g, e := &goldSeg.Element[i], &predSeg.Element[i]
		if withPos && g.Pos() != e.Pos() {
			err++
		}
		if g.Dep != e.Dep {
			err++
		}
	}
	return err
}

func (p *Params) Update(gold, pred *types.DependencyInstance, diff featurevector.Sparse, loss float64, updateTimes int) {
	tau := p.Model.Step(diff, loss, updateTimes)
	if p.Log != nil && p.Log.Enabled(context.Background(), slog.LevelDebug) {
		p.Log.Debug("parameters updated", "generation", updateTimes, "loss", loss, "tau", tau,
			"words", gold.NumWord()-1, "diff", diff.String())
	}
}

// Finalize fixes the weights after training; generation is the number of
// updates the decoder performed
func (p *Params) Finalize(generation int) {
	p.Model.Finalize(generation)
}

// NumFeatures is the number of features with a weight
func (p *Params) NumFeatures() int {
	return p.Model.Weights.Len()
}
