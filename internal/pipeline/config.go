package pipeline

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/mds"
)

// Defaults for reporting depth.
const (
	DefaultTopPathways = 5
	DefaultVolcanoTop  = 10
)

// Config names the input tables and the analysis settings for one run.
// Input paths are always explicit; there are no built-in defaults for them.
type Config struct {
	Inputs struct {
		Expression string `mapstructure:"expression"`
		Samples    string `mapstructure:"samples"`
		Features   string `mapstructure:"features"`
		// Pathways is optional; enrichment is skipped when empty.
		Pathways string `mapstructure:"pathways"`
	} `mapstructure:"inputs"`

	Output struct {
		Dir   string `mapstructure:"dir"`
		Plots bool   `mapstructure:"plots"`
	} `mapstructure:"output"`

	// GeneOfInterest is the display symbol for the exploratory boxplot.
	GeneOfInterest string `mapstructure:"gene_of_interest"`

	Significance struct {
		Alpha  float64 `mapstructure:"alpha"`
		Method string  `mapstructure:"method"`
	} `mapstructure:"significance"`

	MDS struct {
		TopGenes int `mapstructure:"top_genes"`
	} `mapstructure:"mds"`

	Export struct {
		DuckDB string `mapstructure:"duckdb"`
	} `mapstructure:"export"`

	// Workers bounds the fitting pool; 0 means one per CPU.
	Workers int `mapstructure:"workers"`
}

// DefaultConfig returns the documented defaults: BH adjustment at adjusted
// p < 0.05, 500 MDS genes, plots on.
func DefaultConfig() Config {
	var c Config
	c.Output.Dir = "results"
	c.Output.Plots = true
	c.GeneOfInterest = "Top2b"
	c.Significance.Alpha = ebayes.DefaultAlpha
	c.Significance.Method = "BH"
	c.MDS.TopGenes = mds.DefaultTopGenes
	return c
}

// LoadConfig reads a YAML config file and merges it over the defaults.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the config can drive a run.
func (c *Config) Validate() error {
	if c.Inputs.Expression == "" {
		return fmt.Errorf("config: inputs.expression is required")
	}
	if c.Inputs.Samples == "" {
		return fmt.Errorf("config: inputs.samples is required")
	}
	if c.Inputs.Features == "" {
		return fmt.Errorf("config: inputs.features is required")
	}
	if c.Significance.Alpha <= 0 || c.Significance.Alpha >= 1 {
		return fmt.Errorf("config: significance.alpha must be in (0, 1), got %v", c.Significance.Alpha)
	}
	if c.Significance.Method != "BH" {
		return fmt.Errorf("config: unsupported significance.method %q (only \"BH\")", c.Significance.Method)
	}
	if c.MDS.TopGenes < 0 {
		return fmt.Errorf("config: mds.top_genes must be non-negative")
	}
	return nil
}
