// Package types holds the joint segmentation/POS/dependency structure of a
// sentence: words with candidate segmentations, segments with candidate POS
// tags and a dependency tree over the currently selected segments.
package types

const (
	ROOT_TOKEN = "ROOT"
	ROOT_LABEL = "ROOT"

	// NoLabel marks an element whose dependency label is not predicted
	NoLabel = -1
)
