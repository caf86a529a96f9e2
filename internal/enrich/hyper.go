package enrich

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// Result is one pathway's over-representation outcome.
type Result struct {
	PathwayID string
	Name      string
	// NPathway is the number of pathway members in the universe, NDE the
	// number of selected (differentially expressed) genes in the universe,
	// and Overlap their intersection.
	NPathway int
	NDE      int
	Overlap  int
	P        float64
}

// Test runs a one-sided hypergeometric over-representation test of every
// pathway against the selected gene set. universe maps external gene
// identifiers eligible for testing; selected must be a subset of it.
// Results are sorted by ascending p-value, ties broken by pathway order.
func (db *DB) Test(universe map[string]bool, selected map[string]bool) []Result {
	n := 0
	for id := range selected {
		if universe[id] {
			n++
		}
	}

	results := make([]Result, 0, len(db.Pathways))
	for _, pw := range db.Pathways {
		k, overlap := 0, 0
		for id := range pw.Members {
			if !universe[id] {
				continue
			}
			k++
			if selected[id] {
				overlap++
			}
		}
		if k == 0 {
			continue
		}
		results = append(results, Result{
			PathwayID: pw.ID,
			Name:      pw.Name,
			NPathway:  k,
			NDE:       n,
			Overlap:   overlap,
			P:         hyperUpperTail(len(universe), k, n, overlap),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].P < results[b].P
	})
	return results
}

// TopN returns the first n results (fewer if the slice is shorter).
func TopN(results []Result, n int) []Result {
	if len(results) < n {
		return results
	}
	return results[:n]
}

// hyperUpperTail returns P(X >= k) for a hypergeometric draw of n genes
// from a universe of size N containing K pathway members.
func hyperUpperTail(N, K, n, k int) float64 {
	if k <= 0 {
		return 1
	}
	max := n
	if K < max {
		max = K
	}
	if k > max {
		return 0
	}

	logDenom := combin.LogGeneralizedBinomial(float64(N), float64(n))
	var p float64
	for i := k; i <= max; i++ {
		if n-i > N-K {
			continue
		}
		lp := combin.LogGeneralizedBinomial(float64(K), float64(i)) +
			combin.LogGeneralizedBinomial(float64(N-K), float64(n-i)) -
			logDenom
		p += math.Exp(lp)
	}
	if p > 1 {
		p = 1
	}
	return p
}
