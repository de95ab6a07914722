package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"segyap/nlp/format/lattice"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/parser/linear"
	"segyap/util"
)

// TrainModel runs the configured number of passes over the annotated
// sentences and finalizes the parameters
func TrainModel(log *slog.Logger, c Config, metrics *hillclimb.Metrics, sents []*lattice.Sentence) (*linear.Extractor, error) {
	params := linear.NewParams(c.Model)
	params.Log = log
	fe := linear.NewExtractor(params, c.Model)

	trainer, err := hillclimb.NewDecoder(c.Decoder, c.Decoder.Mode, c.Decoder.Threads(true), true)
	if err != nil {
		return nil, err
	}
	trainer.Log = log
	trainer.Metrics = metrics
	trainer.Initialize()
	defer trainer.Shutdown()

	for it := 1; it <= c.Model.Iterations; it++ {
		start := time.Now()
		var updates, seeded int
		var loss float64
		for _, sent := range sents {
			if sent.Gold == nil {
				continue
			}
			result, err := trainer.Train(sent.Gold, sent.Pred.Copy(), fe)
			if err != nil {
				return nil, fmt.Errorf("iteration %d sentence %s: %w", it, sent.ID, err)
			}
			loss += result.Loss
			if result.Updated {
				updates++
			}
			if result.GoldSeeded {
				seeded++
			}
		}
		log.Info("iteration", "it", it, "updates", updates, "gold-seeded", seeded,
			"loss", loss, "features", params.NumFeatures(), "seconds", time.Since(start).Seconds())
		util.LogMemory(log)
	}
	params.Finalize(trainer.UpdateTimes)
	return fe, nil
}

func TrainRun(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"train"}); err != nil {
		return err
	}
	if input != "" && outConll == "" {
		return fmt.Errorf("-test needs -oc")
	}
	log := slog.Default()
	c, err := setupConfig(true)
	if err != nil {
		return err
	}
	log.Info("configuration", "decoder", c.Decoder.String(), "iterations", c.Model.Iterations,
		"c", c.Model.C, "averaged", c.Model.Averaged)

	metrics, stop, err := StartMetrics(log, metricsAdr)
	if err != nil {
		return err
	}
	defer stop()

	alphabets := lattice.NewAlphabets()
	sents, err := ReadCorpus(log, c, "train", trainFile, alphabets)
	if err != nil {
		return err
	}
	fe, err := TrainModel(log, c, metrics, sents)
	if err != nil {
		return err
	}
	if input == "" {
		return nil
	}

	alphabets.Freeze()
	tests, err := ReadCorpus(log, c, "test", input, alphabets)
	if err != nil {
		return err
	}
	decoder, err := hillclimb.NewDecoder(c.Decoder, c.Decoder.Mode, c.Decoder.Threads(false), false)
	if err != nil {
		return err
	}
	decoder.Log = log
	decoder.Metrics = metrics
	decoder.Initialize()
	defer decoder.Shutdown()

	preds, _, err := DecodeCorpus(log, decoder, fe, tests)
	if err != nil {
		return err
	}
	return WriteOutput(log, outputs(), preds, alphabets)
}

func TrainCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       TrainRun,
		UsageLine: "train <file options> [arguments]",
		Short:     "trains the joint model and optionally decodes a test set with it",
		Long: `
trains a passive aggressive model on annotated lattices, then decodes and
evaluates a test set when one is given

	$ ./segyap train -train <annotated lattices> [-test <lattices> -oc <out conll>] [options]

`,
		Flag: *flag.NewFlagSet("train", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&trainFile, "train", "", "Training Lattices File (YAML documents with gold)")
	cmd.Flag.StringVar(&input, "test", "", "Optional - Test Lattices File")
	cmd.Flag.IntVar(&Iterations, "it", 0, "Optional - number of training iterations, overrides the configuration")
	addCommonFlags(cmd)
	return cmd
}
