package perceptron

import (
	"log/slog"
	"math"

	. "segyap/alg/featurevector"
)

// PassiveAggressive is an online large margin learner (PA-I). Every
// margin violation moves the weights along the feature difference by
// min(C, loss / ||diff||^2).
type PassiveAggressive struct {
	Weights *AvgSparse
	C       float64
	Updater UpdateStrategy
	Log     *slog.Logger

	Updates   int
	finalized bool
}

var _ OnlineModel = &PassiveAggressive{}

func NewPassiveAggressive(c float64, updater UpdateStrategy) *PassiveAggressive {
	if updater == nil {
		updater = &AveragedStrategy{}
	}
	return &PassiveAggressive{
		Weights: NewAvgSparse(),
		C:       c,
		Updater: updater,
	}
}

func (m *PassiveAggressive) Score(features Sparse) float64 {
	return m.Weights.DotProduct(features)
}

func (m *PassiveAggressive) Step(diff Sparse, loss float64, generation int) float64 {
	if m.finalized {
		panic("Model already finalized")
	}
	norm := diff.L2NormSquared()
	if norm == 0.0 || loss <= 0.0 {
		return 0.0
	}
	tau := loss / norm
	if m.C > 0.0 {
		tau = math.Min(m.C, tau)
	}
	m.Weights.UpdateScaledAdd(generation, diff, tau)
	m.Updates++
	if m.Log != nil {
		m.Log.Debug("weights updated", "generation", generation, "loss", loss, "tau", tau, "features", len(diff))
	}
	return tau
}

// Finalize replaces the training weights with the ones chosen by the
// update strategy. The model may not be trained afterwards.
func (m *PassiveAggressive) Finalize(generation int) {
	final := m.Updater.Finalize(m.Weights, generation)
	weights := NewAvgSparse()
	weights.UpdateScaledAdd(0, final, 1.0)
	m.Weights = weights
	m.finalized = true
}

func (m *PassiveAggressive) Finalized() bool {
	return m.finalized
}
