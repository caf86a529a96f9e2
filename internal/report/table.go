// Package report renders the analysis outputs: per-contrast result tables,
// console summaries and plots.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/exprtab"
)

// ResultWriter writes a per-contrast result table in tab-delimited format,
// one row per gene in original gene order.
type ResultWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewResultWriter creates a new tab-delimited result writer.
func NewResultWriter(w io.Writer) *ResultWriter {
	return &ResultWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"gene_id",
			"symbol",
			"log_fc",
			"t",
			"p_value",
			"adj_p_value",
			"call",
		},
	}
}

// WriteHeader writes the header line.
func (rw *ResultWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	return err
}

// WriteStats writes every gene of a contrast's moderated statistics. The
// features slice must be index-aligned with the stats (the post-filter
// dataset's features).
func (rw *ResultWriter) WriteStats(features []exprtab.Feature, s *ebayes.Stats) error {
	if len(features) != len(s.LogFC) {
		return fmt.Errorf("report: %d features for %d statistics rows", len(features), len(s.LogFC))
	}

	for g, f := range features {
		symbol := f.Symbol
		if symbol == "" {
			symbol = "-"
		}
		_, err := fmt.Fprintf(rw.w, "%s\t%s\t%.6g\t%.6g\t%.6g\t%.6g\t%s\n",
			f.ID, symbol, s.LogFC[g], s.T[g], s.P[g], s.AdjP[g], s.Calls[g])
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output.
func (rw *ResultWriter) Flush() error {
	return rw.w.Flush()
}
