// Package fit performs per-gene ordinary least squares against the design
// matrix and evaluates contrasts of the fitted coefficients.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/exprlab/godea/internal/design"
	"github.com/exprlab/godea/internal/exprtab"
)

// Model holds the design-dependent pieces of the least-squares problem,
// computed once and applied to every gene.
type Model struct {
	design *design.Design
	// pinv is (X'X)^-1 X', p x n. beta = pinv * y.
	pinv *mat.Dense
	// xtxInv is (X'X)^-1, p x p.
	xtxInv *mat.Dense
	// residDF is n - p, shared by all genes.
	residDF float64
}

// GeneFit is the least-squares result for one gene.
type GeneFit struct {
	Coef   []float64 // one per design column
	Sigma2 float64   // residual variance, RSS/(n-p)
}

// Fits collects the per-gene results in gene order.
type Fits struct {
	Coef    *mat.Dense // genes x p
	Sigma2  []float64
	ResidDF float64
}

// NewModel prepares the pseudoinverse and unscaled covariance for the given
// design. The design must have more samples than columns and full column
// rank.
func NewModel(d *design.Design) (*Model, error) {
	n, p := d.X.Dims()
	if n <= p {
		return nil, fmt.Errorf("fit: %d samples cannot estimate %d coefficients with residual degrees of freedom", n, p)
	}

	var xtx mat.Dense
	xtx.Mul(d.X.T(), d.X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("fit: design matrix is not full rank: %w", err)
	}

	var pinv mat.Dense
	pinv.Mul(&xtxInv, d.X.T())

	return &Model{
		design:  d,
		pinv:    &pinv,
		xtxInv:  &xtxInv,
		residDF: float64(n - p),
	}, nil
}

// ResidDF returns the residual degrees of freedom shared by all genes.
func (m *Model) ResidDF() float64 {
	return m.residDF
}

// Design returns the design the model was built from.
func (m *Model) Design() *design.Design {
	return m.design
}

// FitGene fits one gene's expression vector (one value per sample).
func (m *Model) FitGene(y []float64) GeneFit {
	n, p := m.design.X.Dims()

	yv := mat.NewVecDense(n, y)
	beta := mat.NewVecDense(p, nil)
	beta.MulVec(m.pinv, yv)

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(m.design.X, beta)

	var rss float64
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
	}

	coef := make([]float64, p)
	copy(coef, beta.RawVector().Data)

	return GeneFit{Coef: coef, Sigma2: rss / m.residDF}
}

// FitAll fits every gene of the dataset. Fitting runs on a worker pool (see
// ParallelFit) but results are collected in gene order, so the output is
// identical to a sequential pass. workers <= 0 selects one per CPU.
func (m *Model) FitAll(ds *exprtab.Dataset, workers int) (*Fits, error) {
	genes := ds.Genes()
	_, p := m.design.X.Dims()

	fits := &Fits{
		Coef:    mat.NewDense(genes, p, nil),
		Sigma2:  make([]float64, genes),
		ResidDF: m.residDF,
	}

	items := make(chan WorkItem, 64)
	go func() {
		defer close(items)
		for i := 0; i < genes; i++ {
			items <- WorkItem{Seq: i, Y: ds.Row(i)}
		}
	}()

	results := m.ParallelFit(items, workers)

	if err := OrderedCollect(results, func(r WorkResult) error {
		fits.Coef.SetRow(r.Seq, r.Fit.Coef)
		fits.Sigma2[r.Seq] = r.Fit.Sigma2
		return nil
	}); err != nil {
		return nil, err
	}

	return fits, nil
}

// ContrastFit holds the per-gene estimates for one contrast.
type ContrastFit struct {
	Name  string
	LogFC []float64
	// StdevUnscaled is sqrt(c' (X'X)^-1 c); one value because the design is
	// shared by all genes.
	StdevUnscaled float64
	Sigma2        []float64
	ResidDF       float64
}

// Contrast evaluates a contrast over all fitted genes.
func (m *Model) Contrast(f *Fits, c design.Contrast) (*ContrastFit, error) {
	genes, p := f.Coef.Dims()
	if len(c.Coef) != p {
		return nil, fmt.Errorf("fit: contrast %q has %d coefficients for a %d-column design", c.Name, len(c.Coef), p)
	}

	cv := mat.NewVecDense(p, c.Coef)

	tmp := mat.NewVecDense(p, nil)
	tmp.MulVec(m.xtxInv, cv)
	stdevUnscaled := math.Sqrt(mat.Dot(cv, tmp))

	logFC := make([]float64, genes)
	for g := 0; g < genes; g++ {
		var v float64
		for j := 0; j < p; j++ {
			v += c.Coef[j] * f.Coef.At(g, j)
		}
		logFC[g] = v
	}

	return &ContrastFit{
		Name:          c.Name,
		LogFC:         logFC,
		StdevUnscaled: stdevUnscaled,
		Sigma2:        f.Sigma2,
		ResidDF:       f.ResidDF,
	}, nil
}
