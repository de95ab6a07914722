package app

import (
	"github.com/gonuts/commander"
)

var (
	// file names
	confFile   string
	input      string
	trainFile  string
	outConll   string
	outSeg     string
	outMap     string
	metricsAdr string

	// overrides of the configuration, unset when zero
	Iterations int
	Threads    int
	Seed       uint64
)

// Outputs names the files written after decoding; empty names are skipped
type Outputs struct {
	Conll, Seg, Map string
}

func outputs() Outputs {
	return Outputs{Conll: outConll, Seg: outSeg, Map: outMap}
}

// setupConfig loads -conf and applies the command line overrides
func setupConfig(isTrain bool) (Config, error) {
	c, err := LoadConfig(confFile)
	if err != nil {
		return c, err
	}
	if Iterations > 0 {
		c.Model.Iterations = Iterations
	}
	if Threads > 0 {
		if isTrain {
			c.Decoder.TrainThreads = Threads
		} else {
			c.Decoder.DecodeThreads = Threads
		}
	}
	if Seed > 0 {
		c.Decoder.Seed = Seed
	}
	return c, c.Validate()
}

func addCommonFlags(cmd *commander.Command) {
	cmd.Flag.StringVar(&confFile, "conf", "", "Optional - YAML configuration file (decoder, model and lattice sections)")
	cmd.Flag.StringVar(&outConll, "oc", "", "Output Conll File")
	cmd.Flag.StringVar(&outSeg, "os", "", "Optional - Output Segmentation File")
	cmd.Flag.StringVar(&outMap, "om", "", "Optional - Output Mapping (disambiguated lattice) File")
	cmd.Flag.StringVar(&metricsAdr, "metrics", "", "Optional - address serving Prometheus metrics, e.g. :9090")
	cmd.Flag.IntVar(&Threads, "threads", 0, "Optional - decoder worker count, overrides the configuration")
	cmd.Flag.Uint64Var(&Seed, "seed", 0, "Optional - random seed, overrides the configuration")
}
