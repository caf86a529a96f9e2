// Package design builds the factorial design matrix and the contrast
// specifications for the genotype x treatment experiment.
package design

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/exprlab/godea/internal/exprtab"
)

// Canonical ordering of the combined factor levels. Only levels that occur
// in the sample metadata become design columns.
var levelOrder = []string{
	exprtab.GenotypeWT + "." + exprtab.TreatmentPBS,
	exprtab.GenotypeWT + "." + exprtab.TreatmentDox,
	exprtab.GenotypeTop2b + "." + exprtab.TreatmentPBS,
	exprtab.GenotypeTop2b + "." + exprtab.TreatmentDox,
}

// Design is the immutable no-intercept one-hot encoding of the combined
// genotype.treatment factor: one row per sample, one column per level.
type Design struct {
	X      *mat.Dense
	Levels []string
	// groupIndex maps each sample to its design column.
	groupIndex []int
}

// FromSamples constructs the design matrix from sample metadata. The
// combined factor for each sample is genotype "." treatment; entries are
// 0/1 group-membership indicators with no intercept column.
func FromSamples(samples []exprtab.Sample) (*Design, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("design: no samples")
	}

	present := make(map[string]bool, len(levelOrder))
	for _, s := range samples {
		present[s.Group()] = true
	}

	var levels []string
	colOf := make(map[string]int, len(levelOrder))
	for _, lvl := range levelOrder {
		if present[lvl] {
			colOf[lvl] = len(levels)
			levels = append(levels, lvl)
		}
	}

	x := mat.NewDense(len(samples), len(levels), nil)
	groupIndex := make([]int, len(samples))
	for i, s := range samples {
		col, ok := colOf[s.Group()]
		if !ok {
			return nil, fmt.Errorf("design: sample %q has unrecognised group %q", s.ID, s.Group())
		}
		x.Set(i, col, 1)
		groupIndex[i] = col
	}

	return &Design{X: x, Levels: levels, groupIndex: groupIndex}, nil
}

// Counts returns the number of samples per design column.
func (d *Design) Counts() []int {
	counts := make([]int, len(d.Levels))
	for _, col := range d.groupIndex {
		counts[col]++
	}
	return counts
}

// Column returns the design column index of the named level, or -1.
func (d *Design) Column(level string) int {
	for i, lvl := range d.Levels {
		if lvl == level {
			return i
		}
	}
	return -1
}

// GroupOf returns the design column index for sample i.
func (d *Design) GroupOf(i int) int {
	return d.groupIndex[i]
}
