package mds

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/exprlab/godea/internal/exprtab"
)

func newDataset(t *testing.T, genes, samples int, values []float64) *exprtab.Dataset {
	t.Helper()

	ss := make([]exprtab.Sample, samples)
	for j := range ss {
		ss[j] = exprtab.Sample{ID: fmt.Sprintf("s%d", j+1), Genotype: "wt", Treatment: "pbs"}
	}
	fs := make([]exprtab.Feature, genes)
	for i := range fs {
		fs[i] = exprtab.Feature{ID: fmt.Sprintf("g%d", i+1)}
	}
	return &exprtab.Dataset{Exprs: mat.NewDense(genes, samples, values), Samples: ss, Features: fs}
}

func TestTopVarianceGenes(t *testing.T) {
	ds := newDataset(t, 4, 3, []float64{
		1, 1, 1, // variance 0
		0, 10, 20, // highest variance
		5, 6, 7, // small variance
		0, 5, 10, // second highest
	})

	assert.Equal(t, []int{1, 3}, topVarianceGenes(ds, 2))
	assert.Equal(t, []int{1, 2, 3}, topVarianceGenes(ds, 3))
}

func TestEmbed_RecoversDistances(t *testing.T) {
	// Four samples on a line in gene space: s1=0, s2=1, s3=2, s4=3 on the
	// first gene, constant elsewhere.
	ds := newDataset(t, 3, 4, []float64{
		0, 1, 2, 3,
		5, 5, 5, 5,
		2, 2, 2, 2,
	})

	points, err := Embed(ds, 3)
	require.NoError(t, err)
	require.Len(t, points, 4)

	// A 1-D configuration: embedded distances reproduce the originals.
	d := func(a, b Point) float64 {
		return math.Hypot(a.X-b.X, a.Y-b.Y)
	}
	assert.InDelta(t, 1.0, d(points[0], points[1]), 1e-8)
	assert.InDelta(t, 2.0, d(points[0], points[2]), 1e-8)
	assert.InDelta(t, 3.0, d(points[0], points[3]), 1e-8)
	assert.InDelta(t, 1.0, d(points[2], points[3]), 1e-8)
}

func TestEmbed_TopGenesCappedAndDefaulted(t *testing.T) {
	ds := newDataset(t, 5, 4, []float64{
		0, 1, 2, 3,
		1, 0, 3, 2,
		0, 2, 1, 3,
		3, 1, 2, 0,
		1, 3, 0, 2,
	})

	// Requesting more genes than exist and requesting the default must both
	// succeed.
	_, err := Embed(ds, 100)
	assert.NoError(t, err)
	_, err = Embed(ds, 0)
	assert.NoError(t, err)
}

func TestEmbed_TooFewSamples(t *testing.T) {
	ds := newDataset(t, 2, 2, []float64{1, 2, 3, 4})
	_, err := Embed(ds, 2)
	assert.Error(t, err)
}
