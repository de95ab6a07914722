// Package sampling draws from categorical distributions given as
// unnormalized log scores.
package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const probTolerance = 1e-4

// ConvertScoreToProb normalizes log scores into probabilities in place
func ConvertScoreToProb(score []float64) {
	if len(score) == 0 {
		return
	}
	sumScore := floats.LogSumExp(score)
	for i := range score {
		score[i] = math.Exp(score[i] - sumScore)
	}
}

// SamplePoint draws an index from prob by inverse CDF search. prob is
// accumulated in place during the search and restored before returning.
func SamplePoint(prob []float64, r *rand.Rand) int {
	length := len(prob)
	if length == 0 {
		panic("sampling: empty distribution")
	}
	floats.CumSum(prob, prob)
	if math.Abs(prob[length-1]-1.0) >= probTolerance {
		total := prob[length-1]
		restore(prob)
		panic(fmt.Sprintf("sampling: distribution sums to %v", total))
	}

	p := r.Float64()
	ret := 0
	for ; ret < length-1; ret++ {
		if p < prob[ret] {
			break
		}
	}

	restore(prob)
	return ret
}

// SampleScores normalizes the log scores and draws one index
func SampleScores(score []float64, r *rand.Rand) int {
	ConvertScoreToProb(score)
	return SamplePoint(score, r)
}

// Scale multiplies all scores by t (an inverse temperature)
func Scale(score []float64, t float64) {
	floats.Scale(t, score)
}

func restore(prob []float64) {
	for i := len(prob) - 1; i >= 1; i-- {
		prob[i] -= prob[i-1]
	}
}
