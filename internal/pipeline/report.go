package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/report"
)

// WriteReports writes one result table per contrast under the output
// directory and prints the console summaries (group counts, contrast
// definitions, significance tallies, overlap and enrichment) to w.
func (p *Pipeline) WriteReports(o *Outcome, w io.Writer) error {
	dir := p.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, s := range o.Stats {
		if err := writeResultTable(filepath.Join(dir, "results_"+s.Name+".tsv"), o, s); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "== sample groups ==")
	if err := report.WriteGroupCounts(w, o.Design); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n== contrasts ==")
	if err := report.WriteContrasts(w, o.Design, o.Contrasts); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n== significance calls ==")
	if err := report.WriteCallSummary(w, o.Stats); err != nil {
		return err
	}

	fmt.Fprintln(w, "\n== overlap of significant genes ==")
	if err := report.WriteOverlap(w, o.Stats); err != nil {
		return err
	}

	if o.Enrichment != nil {
		fmt.Fprintln(w, "\n== pathway enrichment ==")
		for _, s := range o.Stats {
			for _, direction := range []string{"up", "down"} {
				if err := report.WriteEnrichment(w, s.Name, direction, o.Enrichment[s.Name][direction]); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func writeResultTable(path string, o *Outcome, s *ebayes.Stats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	rw := report.NewResultWriter(f)
	if err := rw.WriteHeader(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := rw.WriteStats(o.Dataset.Features, s); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := rw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
