package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/exprtab"
	"github.com/exprlab/godea/internal/mds"
)

// Plots renders PNG figures into a directory.
type Plots struct {
	Dir string
}

// NewPlots creates the plot directory if needed.
func NewPlots(dir string) (*Plots, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot directory: %w", err)
	}
	return &Plots{Dir: dir}, nil
}

func (pl *Plots) save(p *plot.Plot, name string) error {
	path := filepath.Join(pl.Dir, name)
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// Density draws one kernel density curve per sample.
func (pl *Plots) Density(ds *exprtab.Dataset, name string) error {
	p := plot.New()
	p.Title.Text = "Expression density by sample"
	p.X.Label.Text = "log expression"
	p.Y.Label.Text = "density"

	args := make([]interface{}, 0, 2*len(ds.Samples))
	for j, s := range ds.Samples {
		args = append(args, s.ID, kdeCurve(ds.Col(j), 256))
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return fmt.Errorf("density lines: %w", err)
	}

	return pl.save(p, name)
}

// kdeCurve evaluates a Gaussian kernel density estimate on a regular grid.
func kdeCurve(values []float64, points int) plotter.XYs {
	n := len(values)
	sd := math.Sqrt(stat.Variance(values, nil))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)

	// Silverman's rule of thumb (R's bw.nrd0).
	h := 0.9 * math.Min(sd, iqr/1.34) * math.Pow(float64(n), -0.2)
	if h <= 0 {
		h = math.Max(sd, 1e-3)
	}

	lo := sorted[0] - 3*h
	hi := sorted[n-1] + 3*h
	step := (hi - lo) / float64(points-1)

	xys := make(plotter.XYs, points)
	norm := 1 / (float64(n) * h * math.Sqrt(2*math.Pi))
	for i := range xys {
		x := lo + float64(i)*step
		var d float64
		for _, v := range values {
			u := (x - v) / h
			d += math.Exp(-0.5 * u * u)
		}
		xys[i] = plotter.XY{X: x, Y: d * norm}
	}
	return xys
}

// GeneBoxplot draws the expression of one gene grouped by genotype.
func (pl *Plots) GeneBoxplot(ds *exprtab.Dataset, row int, name string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s expression by genotype", ds.Features[row].Symbol)
	p.Y.Label.Text = "log expression"

	genotypes := []string{exprtab.GenotypeWT, exprtab.GenotypeTop2b}
	values := ds.Row(row)
	for i, gt := range genotypes {
		var group plotter.Values
		for j, s := range ds.Samples {
			if s.Genotype == gt {
				group = append(group, values[j])
			}
		}
		if len(group) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(25), float64(i), group)
		if err != nil {
			return fmt.Errorf("boxplot %s: %w", gt, err)
		}
		p.Add(box)
	}
	p.NominalX(genotypes...)

	return pl.save(p, name)
}

// MDS draws the 2-D embedding with one scatter series per distinct label.
// labels must have one entry per point (e.g. genotype or treatment).
func (pl *Plots) MDS(points []mds.Point, labels []string, title, name string) error {
	if len(labels) != len(points) {
		return fmt.Errorf("mds plot: %d labels for %d points", len(labels), len(points))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "dim 1"
	p.Y.Label.Text = "dim 2"

	var order []string
	series := make(map[string]plotter.XYs)
	for i, lbl := range labels {
		if _, ok := series[lbl]; !ok {
			order = append(order, lbl)
		}
		series[lbl] = append(series[lbl], plotter.XY{X: points[i].X, Y: points[i].Y})
	}

	args := make([]interface{}, 0, 2*len(order))
	for _, lbl := range order {
		args = append(args, lbl, series[lbl])
	}
	if err := plotutil.AddScatters(p, args...); err != nil {
		return fmt.Errorf("mds scatters: %w", err)
	}

	return pl.save(p, name)
}

// PValueHist draws the raw p-value histogram for one contrast. Under the
// null the bars are flat; enrichment near zero indicates true signal.
func (pl *Plots) PValueHist(s *ebayes.Stats, name string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("p-values: %s", s.Name)
	p.X.Label.Text = "p-value"
	p.Y.Label.Text = "genes"

	h, err := plotter.NewHist(plotter.Values(s.P), 20)
	if err != nil {
		return fmt.Errorf("p-value histogram: %w", err)
	}
	p.Add(h)

	return pl.save(p, name)
}

// Volcano draws -log10(p) against log fold change, highlighting the topN
// genes by significance.
func (pl *Plots) Volcano(s *ebayes.Stats, topN int, name string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("volcano: %s", s.Name)
	p.X.Label.Text = "log fold change"
	p.Y.Label.Text = "-log10 p"

	genes := len(s.P)
	all := make(plotter.XYs, genes)
	for g := 0; g < genes; g++ {
		all[g] = plotter.XY{X: s.LogFC[g], Y: negLog10(s.P[g])}
	}
	base, err := plotter.NewScatter(all)
	if err != nil {
		return fmt.Errorf("volcano scatter: %w", err)
	}
	base.GlyphStyle.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	base.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(base)

	if topN > 0 {
		order := make([]int, genes)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return s.P[order[a]] < s.P[order[b]] })
		if topN > genes {
			topN = genes
		}

		top := make(plotter.XYs, topN)
		for i, g := range order[:topN] {
			top[i] = plotter.XY{X: s.LogFC[g], Y: negLog10(s.P[g])}
		}
		hi, err := plotter.NewScatter(top)
		if err != nil {
			return fmt.Errorf("volcano highlight: %w", err)
		}
		hi.GlyphStyle.Color = color.RGBA{R: 220, A: 255}
		hi.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(hi)
	}

	return pl.save(p, name)
}

// negLog10 caps zero p-values so they stay plottable.
func negLog10(p float64) float64 {
	if p <= 0 {
		return 320
	}
	return -math.Log10(p)
}
