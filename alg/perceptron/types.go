package perceptron

import (
	. "segyap/alg/featurevector"
)

// Model is a linear scoring function over sparse feature vectors
type Model interface {
	Score(features Sparse) float64
}

// OnlineModel is a Model that is trained one margin violation at a time
type OnlineModel interface {
	Model
	// Step moves the weights along diff given the violated margin (loss)
	// and returns the step size taken
	Step(diff Sparse, loss float64, generation int) float64
	Finalize(generation int)
}

// UpdateStrategy decides how the final weights are derived from the
// weight history kept during training
type UpdateStrategy interface {
	Finalize(weights *AvgSparse, generation int) Sparse
	Name() string
}

type TrivialStrategy struct{}

var _ UpdateStrategy = &TrivialStrategy{}

func (u *TrivialStrategy) Finalize(weights *AvgSparse, generation int) Sparse {
	return weights.Weights()
}

func (u *TrivialStrategy) Name() string {
	return "trivial"
}

type AveragedStrategy struct{}

var _ UpdateStrategy = &AveragedStrategy{}

func (u *AveragedStrategy) Finalize(weights *AvgSparse, generation int) Sparse {
	return weights.Averaged(generation)
}

func (u *AveragedStrategy) Name() string {
	return "averaged"
}
