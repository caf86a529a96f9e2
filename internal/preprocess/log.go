// Package preprocess transforms a raw expression dataset: natural-log
// transform, between-sample quantile normalisation, and a mean-expression
// filter for undetected genes.
package preprocess

import (
	"fmt"
	"math"

	"github.com/exprlab/godea/internal/exprtab"
)

// LogTransform replaces every expression value with its natural log, in
// place. Values must be strictly positive: the first non-positive value
// fails with a *exprtab.ValidationError naming the gene and sample, so a
// bad input surfaces here instead of as NaN/-Inf downstream.
func LogTransform(ds *exprtab.Dataset) error {
	rows, cols := ds.Exprs.Dims()

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := ds.Exprs.At(i, j)
			if !(v > 0) || math.IsInf(v, 1) {
				return &exprtab.ValidationError{
					Field: "expression",
					Message: fmt.Sprintf("non-positive value %v for gene %q in sample %q cannot be log transformed",
						v, ds.Features[i].ID, ds.Samples[j].ID),
				}
			}
			ds.Exprs.Set(i, j, math.Log(v))
		}
	}

	return nil
}
