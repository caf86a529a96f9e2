package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/exprlab/godea/internal/duckdb"
	"github.com/exprlab/godea/internal/pipeline"
)

func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)

	var (
		configPath string
		dbPath     string
		workers    int
		quiet      bool
	)

	fs.StringVar(&configPath, "c", "", "Analysis config file (YAML)")
	fs.StringVar(&configPath, "config", "", "Analysis config file (YAML)")
	fs.StringVar(&dbPath, "db", "", "DuckDB database file (overrides config)")
	fs.IntVar(&workers, "workers", 0, "Number of model-fitting workers (default: all CPUs)")
	fs.BoolVar(&quiet, "quiet", false, "Suppress progress logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Run the pipeline and export the contrast tables to a DuckDB database.

The database holds one row per contrast and gene with the moderated
statistics, so results can be queried with SQL after the run. Figures
are not rendered in export mode.

Usage:
  godea export [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  godea export --config analysis.yaml --db results/dea.duckdb
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
		return ExitError
	}

	if dbPath != "" {
		cfg.Export.DuckDB = dbPath
	}
	if cfg.Export.DuckDB == "" {
		fmt.Fprintf(os.Stderr, "Error: no database path; set --db or export.duckdb in the config\n")
		return ExitUsage
	}
	if workers != 0 {
		cfg.Workers = workers
	}
	cfg.Output.Plots = false

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

	store, err := duckdb.Open(cfg.Export.DuckDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer store.Close()

	for _, s := range outcome.Stats {
		if err := store.WriteContrastResults(outcome.Dataset.Features, s); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting %s: %v\n", s.Name, err)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Exported %d rows for contrast %s\n", outcome.Dataset.Genes(), s.Name)
	}

	fmt.Fprintf(os.Stderr, "Database written to %s\n", cfg.Export.DuckDB)
	return ExitSuccess
}
