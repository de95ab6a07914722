// Package app wires the joint decoder into the segyap command line.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"segyap/util"
)

const (
	NUM_CPUS_FLAG  = "cpus"
	LOG_LEVEL_FLAG = "log"
)

var (
	CPUs     int
	LogLevel string
)

func AllCommands() *commander.Command {
	cmd := &commander.Command{
		UsageLine: os.Args[0],
		Short:     "joint segmentation, tagging and dependency parsing by hill climbing",
		Subcommands: []*commander.Command{
			DecodeCmd(),
			TrainCmd(),
		},
		Flag: *flag.NewFlagSet("segyap", flag.ExitOnError),
	}
	for _, app := range cmd.Subcommands {
		app.Run = NewAppWrapCommand(app.Run)
		app.Flag.IntVar(&CPUs, NUM_CPUS_FLAG, 0, "Max CPUS to use (runtime.GOMAXPROCS); 0 = all")
		app.Flag.StringVar(&LogLevel, LOG_LEVEL_FLAG, "info", "Log level [debug, info, warn, error]")
	}
	return cmd
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return l, fmt.Errorf("unknown log level %q", level)
	}
	return l, nil
}

func InitCommand(cmd *commander.Command, args []string) error {
	level, err := parseLevel(LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger.With("cmd", cmd.Name()))

	maxCPUs := runtime.NumCPU()
	if CPUs > maxCPUs {
		slog.Warn("number of CPUs capped to all available", "cpus", maxCPUs)
		CPUs = 0
	}
	if CPUs == 0 {
		CPUs = maxCPUs
	}
	runtime.GOMAXPROCS(CPUs)
	return nil
}

func NewAppWrapCommand(f func(cmd *commander.Command, args []string) error) func(cmd *commander.Command, args []string) error {
	return func(cmd *commander.Command, args []string) error {
		if err := InitCommand(cmd, args); err != nil {
			return err
		}
		return f(cmd, args)
	}
}

// VerifyFlags fails when a required flag was left empty
func VerifyFlags(cmd *commander.Command, required []string) error {
	for _, name := range required {
		f := cmd.Flag.Lookup(name)
		if f == nil || f.Value.String() == "" {
			cmd.Usage()
			return fmt.Errorf("required flag -%s not set", name)
		}
	}
	return nil
}

// VerifyExists logs the digest of an input file, failing when it cannot be
// read
func VerifyExists(log *slog.Logger, role, filename string) error {
	digest, err := util.MD5File(filename)
	if err != nil {
		return fmt.Errorf("%s file: %w", role, err)
	}
	log.Info("input", "role", role, "file", filename, "md5", digest)
	return nil
}
