// Package mds computes a 2-D multi-dimensional scaling embedding of the
// samples from the most variable genes, for exploratory plotting.
package mds

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/exprlab/godea/internal/exprtab"
)

// DefaultTopGenes is the number of most-variable genes used for the
// embedding when none is configured.
const DefaultTopGenes = 500

// Point is one sample's position in the 2-D embedding.
type Point struct {
	X, Y float64
}

// Embed selects the topGenes most variable genes (ties broken by gene
// order), computes pairwise Euclidean distances between samples over those
// genes, and applies classical (Torgerson) scaling. The first two
// dimensions are returned, one point per sample in sample order.
func Embed(ds *exprtab.Dataset, topGenes int) ([]Point, error) {
	genes, n := ds.Exprs.Dims()
	if n < 3 {
		return nil, fmt.Errorf("mds: need at least 3 samples, have %d", n)
	}
	if topGenes <= 0 {
		topGenes = DefaultTopGenes
	}
	if topGenes > genes {
		topGenes = genes
	}

	selected := topVarianceGenes(ds, topGenes)

	// Squared Euclidean distances between samples over the selected genes.
	d2 := make([][]float64, n)
	for a := range d2 {
		d2[a] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			var ss float64
			for _, g := range selected {
				d := ds.Exprs.At(g, a) - ds.Exprs.At(g, b)
				ss += d * d
			}
			d2[a][b], d2[b][a] = ss, ss
		}
	}

	// Torgerson double centering: B = -0.5 * J D2 J.
	rowMean := make([]float64, n)
	var grand float64
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			rowMean[a] += d2[a][b]
		}
		rowMean[a] /= float64(n)
		grand += rowMean[a]
	}
	grand /= float64(n)

	b := mat.NewSymDense(n, nil)
	for a := 0; a < n; a++ {
		for c := a; c < n; c++ {
			b.SetSym(a, c, -0.5*(d2[a][c]-rowMean[a]-rowMean[c]+grand))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(b, true) {
		return nil, fmt.Errorf("mds: eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back in ascending order; the leading dimensions are
	// the last columns.
	first, second := n-1, n-2
	if vals[first] <= 0 {
		return nil, fmt.Errorf("mds: no positive eigenvalue, samples are coincident")
	}
	s1 := math.Sqrt(vals[first])
	s2 := 0.0
	if vals[second] > 0 {
		s2 = math.Sqrt(vals[second])
	}

	points := make([]Point, n)
	for i := range points {
		points[i] = Point{
			X: vecs.At(i, first) * s1,
			Y: vecs.At(i, second) * s2,
		}
	}
	return points, nil
}

// topVarianceGenes returns the row indices of the k most variable genes in
// ascending row order.
func topVarianceGenes(ds *exprtab.Dataset, k int) []int {
	genes, _ := ds.Exprs.Dims()

	variances := make([]float64, genes)
	for g := 0; g < genes; g++ {
		variances[g] = stat.Variance(ds.Row(g), nil)
	}

	order := make([]int, genes)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return variances[order[a]] > variances[order[b]]
	})

	selected := append([]int(nil), order[:k]...)
	sort.Ints(selected)
	return selected
}
