package preprocess

import (
	"github.com/exprlab/godea/internal/exprtab"
)

// FilterByMean keeps only genes whose mean expression across all samples is
// strictly greater than zero and returns the filtered dataset together with
// the number of genes dropped. On log-normalised data this removes genes
// whose average intensity never rose above the log(1) detection floor.
func FilterByMean(ds *exprtab.Dataset) (*exprtab.Dataset, int) {
	rows, cols := ds.Exprs.Dims()

	keep := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		var sum float64
		for j := 0; j < cols; j++ {
			sum += ds.Exprs.At(i, j)
		}
		if sum/float64(cols) > 0 {
			keep = append(keep, i)
		}
	}

	if len(keep) == rows {
		return ds, 0
	}
	return ds.SubsetGenes(keep), rows - len(keep)
}
