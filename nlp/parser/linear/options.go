package linear

import (
	"errors"
	"fmt"
)

var ErrInvalidOptions = errors.New("linear: invalid options")

// Options select the feature templates, pruning and learner of the model
type Options struct {
	// heads further than this many flat positions are pruned, 0 disables
	MaxHeadDist int `yaml:"max-head-dist"`

	// upper bound on the passive aggressive step, 0 means unbounded
	C        float64 `yaml:"c"`
	Averaged bool    `yaml:"averaged"`

	Siblings     bool `yaml:"siblings"`
	Grandparents bool `yaml:"grandparents"`
	SegPos       bool `yaml:"seg-pos"`

	Iterations int `yaml:"iterations"`
}

func DefaultOptions() Options {
	return Options{
		MaxHeadDist:  20,
		C:            0.0001,
		Averaged:     true,
		Siblings:     true,
		Grandparents: true,
		SegPos:       true,
		Iterations:   10,
	}
}

func (o Options) Validate() error {
	switch {
	case o.MaxHeadDist < 0:
		return fmt.Errorf("%w: max-head-dist %d is negative", ErrInvalidOptions, o.MaxHeadDist)
	case o.C < 0:
		return fmt.Errorf("%w: c %v is negative", ErrInvalidOptions, o.C)
	case o.Iterations < 1:
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidOptions)
	}
	return nil
}
