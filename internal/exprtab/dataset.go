package exprtab

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset binds the expression matrix to its sample and feature metadata.
// The three parts are index-aligned: row i of the matrix describes
// Features[i], column j describes Samples[j]. Subsetting goes through
// SubsetGenes so the alignment cannot drift.
type Dataset struct {
	Exprs    *mat.Dense
	Samples  []Sample
	Features []Feature
}

// NewDataset assembles and validates an annotated dataset. Matrix row
// identifiers must equal the feature identifiers and matrix column
// identifiers must equal the sample identifiers, in order. Misalignment is
// reported as a *ValidationError naming the first offending index.
func NewDataset(m *Matrix, samples []Sample, features []Feature) (*Dataset, error) {
	if len(features) != len(m.GeneIDs) {
		return nil, &ValidationError{
			Field:   "features",
			Message: fmt.Sprintf("matrix has %d gene rows but feature metadata has %d rows", len(m.GeneIDs), len(features)),
		}
	}
	if len(samples) != len(m.SampleIDs) {
		return nil, &ValidationError{
			Field:   "samples",
			Message: fmt.Sprintf("matrix has %d sample columns but sample metadata has %d rows", len(m.SampleIDs), len(samples)),
		}
	}

	for i, f := range features {
		if f.ID != m.GeneIDs[i] {
			return nil, &ValidationError{
				Field:   "features",
				Message: fmt.Sprintf("gene identifier mismatch at row %d: matrix has %q, metadata has %q", i, m.GeneIDs[i], f.ID),
			}
		}
	}
	for j, s := range samples {
		if s.ID != m.SampleIDs[j] {
			return nil, &ValidationError{
				Field:   "samples",
				Message: fmt.Sprintf("sample identifier mismatch at column %d: matrix has %q, metadata has %q", j, m.SampleIDs[j], s.ID),
			}
		}
	}

	return &Dataset{Exprs: m.Values, Samples: samples, Features: features}, nil
}

// Genes returns the number of genes (matrix rows).
func (d *Dataset) Genes() int {
	r, _ := d.Exprs.Dims()
	return r
}

// NSamples returns the number of samples (matrix columns).
func (d *Dataset) NSamples() int {
	_, c := d.Exprs.Dims()
	return c
}

// Row copies the expression values of gene i into a new slice.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.Exprs)
}

// Col copies the expression values of sample j into a new slice.
func (d *Dataset) Col(j int) []float64 {
	return mat.Col(nil, j, d.Exprs)
}

// FindSymbol returns the row index of the first feature with the given
// display symbol, or -1.
func (d *Dataset) FindSymbol(symbol string) int {
	for i, f := range d.Features {
		if f.Symbol == symbol {
			return i
		}
	}
	return -1
}

// SubsetGenes returns a new dataset containing only the genes at the given
// row indices, in the given order. The feature metadata is subset together
// with the matrix rows; samples are shared.
func (d *Dataset) SubsetGenes(keep []int) *Dataset {
	_, cols := d.Exprs.Dims()

	sub := mat.NewDense(len(keep), cols, nil)
	features := make([]Feature, len(keep))
	for i, row := range keep {
		sub.SetRow(i, d.Row(row))
		features[i] = d.Features[row]
	}

	return &Dataset{Exprs: sub, Samples: d.Samples, Features: features}
}

// ValidationError reports an input that fails cross-table or numeric
// validation before a pipeline stage runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}
