package ebayes

import "sort"

// AdjustBH returns Benjamini-Hochberg adjusted p-values, preserving input
// order. adj[i] = min over j with p[j] >= p[i] of p[j]*n/rank(j), clamped
// at 1.
func AdjustBH(p []float64) []float64 {
	n := len(p)
	adj := make([]float64, n)
	if n == 0 {
		return adj
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return p[order[a]] < p[order[b]] })

	// Walk from the largest p down, carrying the running minimum.
	min := 1.0
	for r := n - 1; r >= 0; r-- {
		i := order[r]
		v := p[i] * float64(n) / float64(r+1)
		if v < min {
			min = v
		}
		adj[i] = min
	}

	return adj
}
