package app

import (
	"log/slog"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"segyap/nlp/format/lattice"
	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/parser/linear"
)

func DecodeRun(cmd *commander.Command, args []string) error {
	if err := VerifyFlags(cmd, []string{"in", "oc"}); err != nil {
		return err
	}
	log := slog.Default()
	c, err := setupConfig(false)
	if err != nil {
		return err
	}
	log.Info("configuration", "decoder", c.Decoder.String())

	metrics, stop, err := StartMetrics(log, metricsAdr)
	if err != nil {
		return err
	}
	defer stop()

	alphabets := lattice.NewAlphabets()
	sents, err := ReadCorpus(log, c, "input", input, alphabets)
	if err != nil {
		return err
	}

	// without a trained model the lattice probabilities decide alone
	params := linear.NewPriorParams(c.Model)
	params.Log = log
	fe := linear.NewExtractor(params, c.Model)

	decoder, err := hillclimb.NewDecoder(c.Decoder, c.Decoder.Mode, c.Decoder.Threads(false), false)
	if err != nil {
		return err
	}
	decoder.Log = log
	decoder.Metrics = metrics
	decoder.Initialize()
	defer decoder.Shutdown()

	preds, _, err := DecodeCorpus(log, decoder, fe, sents)
	if err != nil {
		return err
	}
	return WriteOutput(log, outputs(), preds, alphabets)
}

func DecodeCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DecodeRun,
		UsageLine: "decode <file options> [arguments]",
		Short:     "decodes lattices with the lattice probabilities as the only evidence",
		Long: `
decodes the segmentation, tags and dependency tree of every input sentence

	$ ./segyap decode -in <input lattices> -oc <out conll> [options]

Input ending in .yaml/.yml is read as YAML documents, anything else as tab
separated lattices; set lattice.format in -conf to force one. Sentences
carrying a gold analysis are evaluated.
`,
		Flag: *flag.NewFlagSet("decode", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&input, "in", "", "Input Lattices File")
	addCommonFlags(cmd)
	return cmd
}
