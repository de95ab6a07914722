package hillclimb

import (
	"segyap/alg/featurevector"
	"segyap/nlp/types"
)

// CacheTable is an extractor-owned store of partial scores valid for one
// segmentation and POS assignment of an instance.
type CacheTable interface {
	NumSeg() int
}

// FeatureExtractor scores whole or partial structures of an instance under
// the current model. Partial scores need only be consistent for comparing
// alternatives of the same unit.
type FeatureExtractor interface {
	Parameters() Parameters

	// CacheTable returns a cache for the current segmentation and POS
	// assignment of inst, or nil if the extractor does not cache.
	CacheTable(inst *types.DependencyInstance) CacheTable

	ArcScore(inst *types.DependencyInstance, cache CacheTable, h, m types.HeadIndex) float64
	PartialDepScore(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) float64
	PartialBigramDepScore(inst *types.DependencyInstance, cache CacheTable, m, n types.HeadIndex) float64
	PartialPosScore(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) float64
	PosScore(inst *types.DependencyInstance, m types.HeadIndex) float64
	SegScore(inst *types.DependencyInstance, word int) float64
	Score(inst *types.DependencyInstance, cache CacheTable) float64
	Features(inst *types.DependencyInstance) featurevector.Sparse

	// IsPruned flags, by flat id, the heads that may not govern m. m itself
	// is always pruned.
	IsPruned(inst *types.DependencyInstance, cache CacheTable, m types.HeadIndex) []bool
}

// Parameters is the weight vector together with the task loss
type Parameters interface {
	Score(fv featurevector.Sparse) float64
	WordError(gold, pred *types.WordInstance) float64
	WordDepError(gold, pred *types.WordInstance) float64
	ElementError(gold, pred *types.WordInstance, seg int) float64
	Update(gold, pred *types.DependencyInstance, diff featurevector.Sparse, loss float64, updateTimes int)
}
