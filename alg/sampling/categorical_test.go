package sampling

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertScoreToProb(t *testing.T) {
	score := []float64{0.0, 0.0, 1000.0}
	ConvertScoreToProb(score)
	assert.InDelta(t, 0.0, score[0], 1e-12)
	assert.InDelta(t, 1.0, score[2], 1e-12, "large scores must not overflow")

	score = []float64{-1.0, -1.0}
	ConvertScoreToProb(score)
	assert.InDelta(t, 0.5, score[0], 1e-12)
	assert.InDelta(t, 0.5, score[1], 1e-12)
}

func TestSamplePointSingleton(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		prob := []float64{1.0}
		require.Equal(t, 0, SamplePoint(prob, r))
		require.Equal(t, 1.0, prob[0])
	}
}

func TestSamplePointRestoresVector(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	prob := []float64{0.1, 0.2, 0.3, 0.4}
	orig := append([]float64(nil), prob...)
	SamplePoint(prob, r)
	assert.InDeltaSlice(t, orig, prob, 1e-12)
}

func TestSamplePointUniform(t *testing.T) {
	const (
		n     = 5
		draws = 50000
	)
	r := rand.New(rand.NewPCG(5, 6))
	counts := make([]int, n)
	score := make([]float64, n)
	ConvertScoreToProb(score)
	for i := 0; i < draws; i++ {
		counts[SamplePoint(score, r)]++
	}
	for i, c := range counts {
		assert.InDelta(t, 1.0/n, float64(c)/draws, 0.01, "index %d frequency", i)
	}
}

func TestSamplePointRejectsUnnormalized(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	prob := []float64{0.5, 0.2}
	assert.Panics(t, func() { SamplePoint(prob, r) })
	assert.InDeltaSlice(t, []float64{0.5, 0.2}, prob, 1e-12)
}

func TestSampleScoresFollowsWeights(t *testing.T) {
	r := rand.New(rand.NewPCG(9, 10))
	hits := 0
	for i := 0; i < 2000; i++ {
		score := []float64{0.0, 20.0}
		if SampleScores(score, r) == 1 {
			hits++
		}
	}
	assert.Greater(t, hits, 1990)
}
