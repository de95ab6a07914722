package linear

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segyap/alg/featurevector"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/types"
)

func TestWordErrors(t *testing.T) {
	p := NewParams(DefaultOptions())
	gold := jointSentence()
	pred := jointSentence()

	assert.Zero(t, p.WordError(&gold.Word[1], &pred.Word[1]))

	pred.Word[1].UpdatePos(1, 1)
	pred.Element(hi(1, 0)).Dep = hi(1, 1)
	assert.Equal(t, 2.0, p.WordError(&gold.Word[1], &pred.Word[1]))
	assert.Equal(t, 1.0, p.WordDepError(&gold.Word[1], &pred.Word[1]))
	assert.Equal(t, 1.0, p.ElementError(&gold.Word[1], &pred.Word[1], 0))
	assert.Zero(t, p.ElementError(&gold.Word[1], &pred.Word[1], 1), "a tag error is not an attachment error")

	pred.UpdateSeg(1, 1)
	pred.ConstructConversionList()
	assert.Equal(t, 3.0, p.WordError(&gold.Word[1], &pred.Word[1]), "both segmentations count in full")
	assert.Equal(t, 3.0, p.WordDepError(&gold.Word[1], &pred.Word[1]))
	assert.Equal(t, 1.0, p.ElementError(&gold.Word[1], &pred.Word[1], 0))
}

func TestPriorParams(t *testing.T) {
	p := NewPriorParams(DefaultOptions())
	assert.Equal(t, 1.0, p.Weight(featurevector.Feature(ProbFeature)))
	assert.Equal(t, 1, p.NumFeatures())
}

func TestUpdateLogsDiff(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.C = 0
	p := NewParams(opts)
	p.Log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	gold := jointSentence()
	diff := featurevector.Sparse{featurevector.Feature("gold"): 1, featurevector.Feature("pred"): -1}

	p.Update(gold, gold, diff, 1.0, 1)
	assert.InDelta(t, 0.5, p.Weight(featurevector.Feature("gold")), 1e-12)
	assert.Contains(t, buf.String(), "parameters updated")
	assert.Contains(t, buf.String(), `diff="gold 1\npred -1"`)

	buf.Reset()
	p.Log = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	p.Update(gold, gold, diff, 1.0, 2)
	assert.Empty(t, buf.String())
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
	opts := DefaultOptions()
	opts.MaxHeadDist = -1
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
	opts = DefaultOptions()
	opts.Iterations = 0
	assert.ErrorIs(t, opts.Validate(), ErrInvalidOptions)
}

func trainingSentence() *types.DependencyInstance {
	two := []string{"NN", "VB"}
	return types.NewInstance(
		word("dog", two, []string{"dog"}),
		word("barks", two, []string{"barks"}),
		word("loudly", two, []string{"loudly"}),
	)
}

func goldSentence() *types.DependencyInstance {
	gold := trainingSentence()
	gold.Element(hi(1, 0)).Dep = hi(2, 0)
	gold.Element(hi(3, 0)).Dep = hi(2, 0)
	gold.Word[2].UpdatePos(0, 1)
	gold.BuildChild()
	return gold
}

func decoderOptions() hillclimb.Options {
	opts := hillclimb.DefaultOptions()
	opts.TrainConverge = 10
	opts.TestConverge = 10
	opts.EarlyStop = 5
	opts.MaxIter = 30
	return opts
}

func TestTrainingSeparatesGold(t *testing.T) {
	opts := DefaultOptions()
	opts.C = 0
	opts.Averaged = false
	params := NewParams(opts)
	fe := NewExtractor(params, opts)

	trainer, err := hillclimb.NewDecoder(decoderOptions(), hillclimb.HillClimb, 2, true)
	require.NoError(t, err)
	trainer.Initialize()
	defer trainer.Shutdown()

	gold := goldSentence()
	require.NoError(t, gold.CheckTree())
	clean := false
	for epoch := 0; epoch < 100 && !clean; epoch++ {
		result, err := trainer.Train(gold, trainingSentence(), fe)
		require.NoError(t, err)
		clean = !result.Updated
	}
	require.True(t, clean, "a single sentence is separable")
	params.Finalize(trainer.UpdateTimes)
	assert.Positive(t, params.NumFeatures())

	decoder, err := hillclimb.NewDecoder(decoderOptions(), hillclimb.HillClimb, 2, false)
	require.NoError(t, err)
	decoder.Initialize()
	defer decoder.Shutdown()

	pred := trainingSentence()
	score, err := decoder.Decode(pred, fe)
	require.NoError(t, err)
	assert.InDelta(t, fe.Score(gold, nil), score, 1e-6)
	for _, m := range gold.Units()[1:] {
		assert.Equal(t, gold.Element(m).Dep, pred.Element(m).Dep, "head of %v", m)
		assert.Equal(t, gold.Element(m).Pos(), pred.Element(m).Pos(), "tag of %v", m)
	}
}
