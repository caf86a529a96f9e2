package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/exprlab/godea/internal/design"
	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/enrich"
)

// WriteGroupCounts prints the sample count per design group.
func WriteGroupCounts(w io.Writer, d *design.Design) error {
	if _, err := fmt.Fprintln(w, "group\tsamples"); err != nil {
		return err
	}
	counts := d.Counts()
	for i, lvl := range d.Levels {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", lvl, counts[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteContrasts prints the contrast definitions in terms of design columns.
func WriteContrasts(w io.Writer, d *design.Design, contrasts []design.Contrast) error {
	for _, c := range contrasts {
		if _, err := fmt.Fprintf(w, "%s = %s\n", c.Name, c.Describe(d)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCallSummary prints the per-contrast up/down/not-significant tallies.
// The three counts sum to the gene count for every contrast.
func WriteCallSummary(w io.Writer, stats []*ebayes.Stats) error {
	if _, err := fmt.Fprintln(w, "contrast\tup\tdown\tns\ttotal"); err != nil {
		return err
	}
	for _, s := range stats {
		up, down, ns := s.CallCounts()
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", s.Name, up, down, ns, up+down+ns); err != nil {
			return err
		}
	}
	return nil
}

// OverlapCounts tabulates, for every combination of contrasts, how many
// genes are called significant (up or down) in exactly that combination.
// The returned map is keyed by a "+"-joined list of contrast names;
// genes significant nowhere are keyed "none".
func OverlapCounts(stats []*ebayes.Stats) (map[string]int, error) {
	if len(stats) == 0 {
		return nil, fmt.Errorf("report: no contrasts to overlap")
	}
	genes := len(stats[0].Calls)
	for _, s := range stats {
		if len(s.Calls) != genes {
			return nil, fmt.Errorf("report: contrast %q has %d calls, expected %d", s.Name, len(s.Calls), genes)
		}
	}

	counts := make(map[string]int)
	for g := 0; g < genes; g++ {
		var members []string
		for _, s := range stats {
			if s.Calls[g] != ebayes.CallNotSig {
				members = append(members, s.Name)
			}
		}
		key := "none"
		if len(members) > 0 {
			key = strings.Join(members, "+")
		}
		counts[key]++
	}
	return counts, nil
}

// WriteOverlap prints the set-overlap membership table in a fixed region
// order (singles, pairs, triple, then none), skipping empty regions except
// "none".
func WriteOverlap(w io.Writer, stats []*ebayes.Stats) error {
	counts, err := OverlapCounts(stats)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "contrasts\tgenes"); err != nil {
		return err
	}

	names := make([]string, len(stats))
	for i, s := range stats {
		names[i] = s.Name
	}
	for _, key := range regionOrder(names) {
		n, ok := counts[key]
		if !ok && key != "none" {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\n", key, n); err != nil {
			return err
		}
	}
	return nil
}

// regionOrder enumerates the non-empty subsets of names by ascending size,
// preserving contrast order within each size, with "none" last.
func regionOrder(names []string) []string {
	n := len(names)
	var order []string
	for size := 1; size <= n; size++ {
		for mask := 1; mask < 1<<n; mask++ {
			var members []string
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					members = append(members, names[i])
				}
			}
			if len(members) == size {
				order = append(order, strings.Join(members, "+"))
			}
		}
	}
	return append(order, "none")
}

// WriteEnrichment prints the top pathways for one contrast and direction.
func WriteEnrichment(w io.Writer, contrast, direction string, results []enrich.Result) error {
	if _, err := fmt.Fprintf(w, "# %s, %s-regulated\n", contrast, direction); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "pathway_id\tpathway_name\tn_pathway\tn_de\toverlap\tp_value"); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.4g\n",
			r.PathwayID, r.Name, r.NPathway, r.NDE, r.Overlap, r.P); err != nil {
			return err
		}
	}
	return nil
}
