package preprocess

import (
	"math"
	"sort"

	"github.com/exprlab/godea/internal/exprtab"
)

// NormalizeQuantiles rescales each sample's value distribution onto the
// across-sample mean of order statistics, in place. Ranking within a sample
// is preserved; tied values receive the mean of their target quantiles, so
// normalising is deterministic regardless of sort stability.
func NormalizeQuantiles(ds *exprtab.Dataset) {
	rows, cols := ds.Exprs.Dims()
	if rows == 0 || cols < 2 {
		return
	}

	// Reference distribution: mean of the r-th order statistic across samples.
	ref := make([]float64, rows)
	sorted := make([]float64, rows)
	for j := 0; j < cols; j++ {
		copy(sorted, ds.Col(j))
		sort.Float64s(sorted)
		for r, v := range sorted {
			ref[r] += v
		}
	}
	for r := range ref {
		ref[r] /= float64(cols)
	}

	var rk ranker
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		copy(col, ds.Col(j))
		ranks := rk.rank(col)
		for i, r := range ranks {
			// Tie-averaged ranks are half-integers; interpolate the reference.
			lo := int(math.Floor(r))
			hi := int(math.Ceil(r))
			v := ref[lo]
			if hi != lo {
				v = ref[lo] + (r-float64(lo))*(ref[hi]-ref[lo])
			}
			ds.Exprs.Set(i, j, v)
		}
	}
}

// ranker computes sample ranks without mutating the reference slice. Ties
// are ranked as the mean rank of coequals.
type ranker struct {
	f []float64 // Data to be ranked.
	r []int     // A list of indexes into f that reflects rank order after sorting.
}

func (r ranker) Len() int           { return len(r.f) }
func (r ranker) Less(i, j int) bool { return r.f[r.r[i]] < r.f[r.r[j]] }
func (r ranker) Swap(i, j int)      { r.r[i], r.r[j] = r.r[j], r.r[i] }

// rank returns the zero-based sample ranks of the values in f.
func (r *ranker) rank(f []float64) []float64 {
	if len(f) == 0 {
		return nil
	}

	r.f = f
	if len(r.r) < len(f) {
		r.r = make([]int, len(f))
	} else {
		r.r = r.r[:len(f)]
	}

	for i := range r.r {
		r.r[i] = i
	}
	sort.Sort(r)

	// Each run of equal values gets the mean of its sort positions.
	rl := make([]float64, len(f))
	for start := 0; start < len(r.r); {
		end := start + 1
		for end < len(r.r) && r.f[r.r[end]] == r.f[r.r[start]] {
			end++
		}
		v := float64(start+end-1) / 2
		for k := start; k < end; k++ {
			rl[r.r[k]] = v
		}
		start = end
	}

	return rl
}
