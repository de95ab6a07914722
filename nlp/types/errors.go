package types

import "errors"

var (
	// ErrConversion indicates the flat index is stale with respect to the
	// selected segmentations.
	ErrConversion = errors.New("types: flat segment index out of date")
	// ErrDetached indicates a non-root unit without a (valid) head.
	ErrDetached = errors.New("types: unit has no valid head")
	// ErrCycle indicates a unit from which the root is not reachable.
	ErrCycle = errors.New("types: dependency cycle")
	// ErrChildList indicates parent pointers and child lists disagree.
	ErrChildList = errors.New("types: child list inconsistent with heads")
)
