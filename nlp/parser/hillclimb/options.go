package hillclimb

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type DecodingMode int

const (
	HillClimb DecodingMode = iota
	Exact
)

var modeNames = map[DecodingMode]string{
	HillClimb: "hill-climb",
	Exact:     "exact",
}

func (m DecodingMode) String() string {
	if name, exists := modeNames[m]; exists {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseDecodingMode(s string) (DecodingMode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedMode, s)
}

func (m DecodingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DecodingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDecodingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Options configures the decoder
type Options struct {
	Mode DecodingMode `yaml:"mode"`
	Seed uint64       `yaml:"seed"`

	TrainThreads  int `yaml:"train-threads"`
	DecodeThreads int `yaml:"decode-threads"`

	// rounds without improvement before all runs stop
	TrainConverge int `yaml:"train-converge"`
	TestConverge  int `yaml:"test-converge"`
	// rounds without improvement before stopping once gold is matched
	EarlyStop int `yaml:"early-stop"`

	MaxIter         int     `yaml:"max-iter"`
	Temperature     float64 `yaml:"temperature"`
	InitTemperature float64 `yaml:"init-temperature"`
	MaxHalvings     int     `yaml:"max-halvings"`

	// POS candidates with a lower log-probability are not tried
	PosFloor float64 `yaml:"pos-floor"`
	// reject non-projective head moves
	Projective bool `yaml:"projective"`
	// try alternative segmentations during local search
	SegSearch bool `yaml:"seg-search"`
}

func DefaultOptions() Options {
	return Options{
		Mode:            HillClimb,
		Seed:            0,
		TrainThreads:    10,
		DecodeThreads:   5,
		TrainConverge:   200,
		TestConverge:    200,
		EarlyStop:       40,
		MaxIter:         100,
		Temperature:     0.25,
		InitTemperature: 0.3,
		MaxHalvings:     32,
		PosFloor:        -15.0,
		SegSearch:       true,
	}
}

// LoadOptions reads a YAML options file over the defaults
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing options %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o Options) Validate() error {
	switch {
	case o.TrainThreads < 1 || o.DecodeThreads < 1:
		return fmt.Errorf("%w: thread counts must be positive", ErrInvalidOptions)
	case o.TrainConverge < 1 || o.TestConverge < 1:
		return fmt.Errorf("%w: convergence thresholds must be positive", ErrInvalidOptions)
	case o.EarlyStop < 0:
		return fmt.Errorf("%w: negative early-stop", ErrInvalidOptions)
	case o.MaxIter < 1:
		return fmt.Errorf("%w: max-iter must be positive", ErrInvalidOptions)
	case o.Temperature <= 0 || o.InitTemperature <= 0:
		return fmt.Errorf("%w: temperatures must be positive", ErrInvalidOptions)
	case o.MaxHalvings < 0:
		return fmt.Errorf("%w: negative max-halvings", ErrInvalidOptions)
	}
	return nil
}

// Threads returns the worker count for the given use
func (o Options) Threads(isTrain bool) int {
	if isTrain {
		return o.TrainThreads
	}
	return o.DecodeThreads
}

func (o Options) Converge(isTrain bool) int {
	if isTrain {
		return o.TrainConverge
	}
	return o.TestConverge
}

func (o Options) String() string {
	out, err := yaml.Marshal(o)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
