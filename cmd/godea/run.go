package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/exprlab/godea/internal/pipeline"
)

func runAnalysis(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	var (
		configPath string
		outDir     string
		noPlots    bool
		alpha      float64
		gene       string
		workers    int
		quiet      bool
	)

	fs.StringVar(&configPath, "c", "", "Analysis config file (YAML)")
	fs.StringVar(&configPath, "config", "", "Analysis config file (YAML)")
	fs.StringVar(&outDir, "o", "", "Output directory (overrides config)")
	fs.StringVar(&outDir, "out", "", "Output directory (overrides config)")
	fs.BoolVar(&noPlots, "no-plots", false, "Skip figure rendering")
	fs.Float64Var(&alpha, "alpha", 0, "Adjusted p-value cutoff (overrides config)")
	fs.StringVar(&gene, "gene", "", "Gene symbol to plot (overrides config)")
	fs.IntVar(&workers, "workers", 0, "Number of model-fitting workers (default: all CPUs)")
	fs.BoolVar(&quiet, "quiet", false, "Suppress progress logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Run the differential expression pipeline.

Reads the expression matrix, sample and feature metadata named in the
config file, normalises the data, fits per-gene linear models, tests the
standard contrasts and writes result tables and figures to the output
directory.

Usage:
  godea run [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  godea run --config analysis.yaml
  godea run --config analysis.yaml --out results/run2 --alpha 0.01
  godea run --config analysis.yaml --no-plots
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if configPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --config argument required\n\n")
		fs.Usage()
		return ExitUsage
	}

	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Hint: Check that the config file path is correct\n")
		}
		return ExitError
	}

	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if noPlots {
		cfg.Output.Plots = false
	}
	if alpha != 0 {
		cfg.Significance.Alpha = alpha
	}
	if gene != "" {
		cfg.GeneOfInterest = gene
	}
	if workers != 0 {
		cfg.Workers = workers
	}

	p := pipeline.New(cfg)
	if !quiet {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		defer logger.Sync()
		p.SetLogger(logger)
	}

	outcome, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	if err := p.WriteReports(outcome, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Results written to %s\n", cfg.Output.Dir)
	return ExitSuccess
}
