// Package main provides the godea command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Global flags
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	// Parse global flags first
	flag.Parse()

	if showVersion {
		fmt.Printf("godea version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	// Check for subcommand
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return runAnalysis(args[1:])
	case "export":
		return runExport(args[1:])
	case "config":
		return runConfigCommand(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `godea - Differential gene expression analysis

Usage:
  godea [options] <command> [arguments]

Commands:
  run         Run the differential expression pipeline
  export      Run the pipeline and export results to DuckDB
  config      Manage godea configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Run an analysis described by a YAML config file
  godea run --config analysis.yaml

  # Override the output directory and skip the figures
  godea run --config analysis.yaml --out results/run2 --no-plots

  # Export contrast tables to a DuckDB database
  godea export --config analysis.yaml --db results/dea.duckdb

For more information on a command, use:
  godea <command> --help
`)
}
