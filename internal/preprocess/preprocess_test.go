package preprocess

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/exprlab/godea/internal/exprtab"
)

func newDataset(t *testing.T, rows, cols int, values []float64) *exprtab.Dataset {
	t.Helper()

	samples := make([]exprtab.Sample, cols)
	for j := range samples {
		samples[j] = exprtab.Sample{ID: "s" + string(rune('1'+j)), Genotype: "wt", Treatment: "pbs"}
	}
	features := make([]exprtab.Feature, rows)
	for i := range features {
		features[i] = exprtab.Feature{ID: "g" + string(rune('1'+i)), Symbol: "G" + string(rune('1'+i))}
	}

	return &exprtab.Dataset{
		Exprs:    mat.NewDense(rows, cols, values),
		Samples:  samples,
		Features: features,
	}
}

func TestLogTransform(t *testing.T) {
	ds := newDataset(t, 2, 2, []float64{
		1.0, math.E,
		10.0, 100.0,
	})

	require.NoError(t, LogTransform(ds))

	assert.Equal(t, 0.0, ds.Exprs.At(0, 0))
	assert.InDelta(t, 1.0, ds.Exprs.At(0, 1), 1e-12)
	assert.InDelta(t, math.Log(10), ds.Exprs.At(1, 0), 1e-12)
}

func TestLogTransform_NonPositive(t *testing.T) {
	for _, bad := range []float64{0, -1.5, math.NaN()} {
		ds := newDataset(t, 2, 2, []float64{
			1.0, 2.0,
			bad, 4.0,
		})

		err := LogTransform(ds)
		var verr *exprtab.ValidationError
		require.ErrorAs(t, err, &verr, "value %v must be rejected", bad)
		assert.Contains(t, verr.Message, `gene "g2"`)
		assert.Contains(t, verr.Message, `sample "s1"`)
	}
}

func TestNormalizeQuantiles(t *testing.T) {
	// Two samples with the same shape but a shifted scale.
	ds := newDataset(t, 4, 2, []float64{
		1, 2,
		2, 4,
		3, 6,
		4, 8,
	})

	NormalizeQuantiles(ds)

	// Both columns now carry the reference distribution.
	want := []float64{1.5, 3, 4.5, 6}
	assert.InDeltaSlice(t, want, ds.Col(0), 1e-12)
	assert.InDeltaSlice(t, want, ds.Col(1), 1e-12)
}

func TestNormalizeQuantiles_PreservesRankingAndEqualizes(t *testing.T) {
	ds := newDataset(t, 5, 3, []float64{
		5.0, 50, 0.5,
		1.0, 30, 0.1,
		4.0, 10, 0.4,
		2.0, 40, 0.3,
		3.0, 20, 0.2,
	})
	orig := [][]float64{ds.Col(0), ds.Col(1), ds.Col(2)}

	NormalizeQuantiles(ds)

	for j := 0; j < 3; j++ {
		col := ds.Col(j)
		// Within-sample ordering is unchanged.
		for a := 0; a < len(col); a++ {
			for b := 0; b < len(col); b++ {
				if orig[j][a] < orig[j][b] {
					assert.Less(t, col[a], col[b])
				}
			}
		}
		// All samples share one distribution after normalisation.
		sorted := append([]float64(nil), col...)
		sort.Float64s(sorted)
		ref := ds.Col(0)
		sortedRef := append([]float64(nil), ref...)
		sort.Float64s(sortedRef)
		assert.InDeltaSlice(t, sortedRef, sorted, 1e-12)
	}
}

func TestNormalizeQuantiles_Ties(t *testing.T) {
	ds := newDataset(t, 3, 2, []float64{
		1, 10,
		1, 20,
		5, 30,
	})

	NormalizeQuantiles(ds)

	// The tied pair in column 0 gets the mean of the two lowest reference
	// quantiles and stays tied.
	assert.Equal(t, ds.Exprs.At(0, 0), ds.Exprs.At(1, 0))
	assert.Less(t, ds.Exprs.At(0, 0), ds.Exprs.At(2, 0))
}

func TestFilterByMean(t *testing.T) {
	ds := newDataset(t, 4, 2, []float64{
		1.0, 2.0, // mean 1.5, kept
		-1.0, 1.0, // mean 0, dropped
		-2.0, 1.0, // mean -0.5, dropped
		0.1, 0.1, // mean 0.1, kept
	})

	filtered, dropped := FilterByMean(ds)

	assert.Equal(t, 2, dropped)
	require.Equal(t, 2, filtered.Genes())
	assert.Equal(t, "g1", filtered.Features[0].ID)
	assert.Equal(t, "g4", filtered.Features[1].ID)

	// Every kept gene has mean > 0.
	for i := 0; i < filtered.Genes(); i++ {
		row := filtered.Row(i)
		var sum float64
		for _, v := range row {
			sum += v
		}
		assert.Greater(t, sum/float64(len(row)), 0.0)
	}
}

func TestFilterByMean_NoDrop(t *testing.T) {
	ds := newDataset(t, 2, 2, []float64{1, 2, 3, 4})

	filtered, dropped := FilterByMean(ds)

	assert.Equal(t, 0, dropped)
	assert.Same(t, ds, filtered)
}
