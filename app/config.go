package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"segyap/nlp/parser/hillclimb"
	"segyap/nlp/parser/linear"
	"segyap/nlp/types"
	"segyap/util/conf"
)

var ErrConfig = errors.New("app: invalid configuration")

const (
	FormatYAML = "yaml"
	FormatTab  = "lattice"
)

type LatticeConfig struct {
	// input format, guessed from the file extension when empty
	Format string `yaml:"format"`
	// affix node policy; disabled when both are empty
	Determiner   string `yaml:"determiner"`
	SuffixesFile string `yaml:"suffixes-file"`
}

// Config is the YAML file given by -conf. Sections left out keep their
// defaults.
type Config struct {
	Decoder hillclimb.Options `yaml:"decoder"`
	Model   linear.Options    `yaml:"model"`
	Lattice LatticeConfig     `yaml:"lattice"`
}

func DefaultConfig() Config {
	return Config{
		Decoder: hillclimb.DefaultOptions(),
		Model:   linear.DefaultOptions(),
	}
}

func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading configuration: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parsing configuration %s: %w", path, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if err := c.Decoder.Validate(); err != nil {
		return err
	}
	if err := c.Model.Validate(); err != nil {
		return err
	}
	switch c.Lattice.Format {
	case "", FormatYAML, FormatTab:
	default:
		return fmt.Errorf("%w: unknown lattice format %q", ErrConfig, c.Lattice.Format)
	}
	return nil
}

// InputFormat decides how filename is read
func (c Config) InputFormat(filename string) string {
	if c.Lattice.Format != "" {
		return c.Lattice.Format
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTab
	}
}

// NodePolicy builds the affix policy, nil when none is configured
func (c Config) NodePolicy() (types.NodePolicy, error) {
	if c.Lattice.Determiner == "" && c.Lattice.SuffixesFile == "" {
		return nil, nil
	}
	var suffixes []string
	if c.Lattice.SuffixesFile != "" {
		list, err := conf.ReadFile(c.Lattice.SuffixesFile)
		if err != nil {
			return nil, fmt.Errorf("reading suffixes: %w", err)
		}
		suffixes = list.Values
	}
	return types.NewAffixPolicy(c.Lattice.Determiner, suffixes), nil
}
