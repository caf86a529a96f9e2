// Package pipeline runs the differential expression analysis end to end:
// load, preprocess, explore, fit, moderate, test and report.
package pipeline

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/exprlab/godea/internal/design"
	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/enrich"
	"github.com/exprlab/godea/internal/exprtab"
	"github.com/exprlab/godea/internal/fit"
	"github.com/exprlab/godea/internal/mds"
	"github.com/exprlab/godea/internal/preprocess"
	"github.com/exprlab/godea/internal/report"
)

// Pipeline executes one analysis run.
type Pipeline struct {
	cfg    Config
	logger *zap.Logger
}

// Outcome collects every stage's immutable result.
type Outcome struct {
	// Dataset is the post-filter, log-normalised dataset.
	Dataset *exprtab.Dataset
	// Dropped is the number of genes removed by the mean-expression filter.
	Dropped   int
	Design    *design.Design
	Contrasts []design.Contrast
	Prior     ebayes.Prior
	// Stats has one entry per contrast, in contrast order; each slice
	// inside is in gene order.
	Stats []*ebayes.Stats
	// Enrichment maps contrast name, then direction ("up"/"down"), to the
	// top pathways. Nil when no pathway table is configured.
	Enrichment map[string]map[string][]enrich.Result
}

// New creates a pipeline for the given config.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg, logger: zap.NewNop()}
}

// SetLogger sets the logger for stage progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run executes the full pipeline. Stages run strictly in order; the first
// failing stage halts the run.
func (p *Pipeline) Run() (*Outcome, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	ds, err := p.load()
	if err != nil {
		return nil, err
	}
	p.logger.Info("loaded dataset",
		zap.Int("genes", ds.Genes()),
		zap.Int("samples", ds.NSamples()))

	if err := preprocess.LogTransform(ds); err != nil {
		return nil, err
	}
	preprocess.NormalizeQuantiles(ds)
	ds, dropped := preprocess.FilterByMean(ds)
	p.logger.Info("filtered undetected genes",
		zap.Int("kept", ds.Genes()),
		zap.Int("dropped", dropped))

	d, err := design.FromSamples(ds.Samples)
	if err != nil {
		return nil, err
	}
	contrasts, err := design.StandardContrasts(d)
	if err != nil {
		return nil, err
	}

	model, err := fit.NewModel(d)
	if err != nil {
		return nil, err
	}
	fits, err := model.FitAll(ds, p.cfg.Workers)
	if err != nil {
		return nil, err
	}
	p.logger.Info("fitted linear models",
		zap.Int("genes", ds.Genes()),
		zap.Float64("residual_df", fits.ResidDF))

	prior, err := ebayes.FitFDist(fits.Sigma2, fits.ResidDF)
	if err != nil {
		return nil, err
	}
	p.logger.Info("fitted variance prior",
		zap.Float64("prior_df", prior.DF),
		zap.Float64("prior_var", prior.Var))

	stats := make([]*ebayes.Stats, 0, len(contrasts))
	for _, c := range contrasts {
		cf, err := model.Contrast(fits, c)
		if err != nil {
			return nil, err
		}
		s := ebayes.Moderate(cf, prior)
		s.Decide(p.cfg.Significance.Alpha)
		stats = append(stats, s)

		up, down, ns := s.CallCounts()
		p.logger.Info("tested contrast",
			zap.String("contrast", c.Name),
			zap.Float64("alpha", p.cfg.Significance.Alpha),
			zap.String("adjust", p.cfg.Significance.Method),
			zap.Int("up", up),
			zap.Int("down", down),
			zap.Int("ns", ns))
	}

	outcome := &Outcome{
		Dataset:   ds,
		Dropped:   dropped,
		Design:    d,
		Contrasts: contrasts,
		Prior:     prior,
		Stats:     stats,
	}

	if p.cfg.Inputs.Pathways != "" {
		db, err := enrich.Load(p.cfg.Inputs.Pathways)
		if err != nil {
			return nil, err
		}
		outcome.Enrichment = p.enrichAll(db, ds, stats)
		p.logger.Info("tested pathway enrichment",
			zap.Int("pathways", len(db.Pathways)))
	}

	if p.cfg.Output.Plots {
		if err := p.renderPlots(outcome); err != nil {
			return nil, err
		}
	}

	return outcome, nil
}

// load reads and cross-validates the three input tables.
func (p *Pipeline) load() (*exprtab.Dataset, error) {
	m, err := exprtab.ReadMatrix(p.cfg.Inputs.Expression)
	if err != nil {
		return nil, fmt.Errorf("load expression matrix: %w", err)
	}
	samples, err := exprtab.ReadSamples(p.cfg.Inputs.Samples)
	if err != nil {
		return nil, fmt.Errorf("load sample metadata: %w", err)
	}
	features, err := exprtab.ReadFeatures(p.cfg.Inputs.Features)
	if err != nil {
		return nil, fmt.Errorf("load feature metadata: %w", err)
	}
	return exprtab.NewDataset(m, samples, features)
}

// enrichAll runs the over-representation test per contrast and direction
// over the universe of filtered genes with an external identifier.
func (p *Pipeline) enrichAll(db *enrich.DB, ds *exprtab.Dataset, stats []*ebayes.Stats) map[string]map[string][]enrich.Result {
	universe := make(map[string]bool)
	for _, f := range ds.Features {
		if f.EntrezID != "" {
			universe[f.EntrezID] = true
		}
	}

	out := make(map[string]map[string][]enrich.Result, len(stats))
	for _, s := range stats {
		byDir := make(map[string][]enrich.Result, 2)
		for _, dir := range []struct {
			name string
			call ebayes.Call
		}{{"up", ebayes.CallUp}, {"down", ebayes.CallDown}} {
			selected := make(map[string]bool)
			for g, c := range s.Calls {
				if c == dir.call && ds.Features[g].EntrezID != "" {
					selected[ds.Features[g].EntrezID] = true
				}
			}
			byDir[dir.name] = enrich.TopN(db.Test(universe, selected), DefaultTopPathways)
		}
		out[s.Name] = byDir
	}
	return out
}

// renderPlots writes the exploratory and per-contrast figures.
func (p *Pipeline) renderPlots(o *Outcome) error {
	plots, err := report.NewPlots(filepath.Join(p.cfg.Output.Dir, "plots"))
	if err != nil {
		return err
	}

	if err := plots.Density(o.Dataset, "density.png"); err != nil {
		return err
	}

	if row := o.Dataset.FindSymbol(p.cfg.GeneOfInterest); row >= 0 {
		if err := plots.GeneBoxplot(o.Dataset, row, "gene_of_interest.png"); err != nil {
			return err
		}
	} else if p.cfg.GeneOfInterest != "" {
		p.logger.Warn("gene of interest not found after filtering",
			zap.String("symbol", p.cfg.GeneOfInterest))
	}

	points, err := mds.Embed(o.Dataset, p.cfg.MDS.TopGenes)
	if err != nil {
		return err
	}
	genotype := make([]string, len(o.Dataset.Samples))
	treatment := make([]string, len(o.Dataset.Samples))
	for i, s := range o.Dataset.Samples {
		genotype[i] = s.Genotype
		treatment[i] = s.Treatment
	}
	if err := plots.MDS(points, genotype, "MDS by genotype", "mds_genotype.png"); err != nil {
		return err
	}
	if err := plots.MDS(points, treatment, "MDS by treatment", "mds_treatment.png"); err != nil {
		return err
	}

	for _, s := range o.Stats {
		if err := plots.PValueHist(s, fmt.Sprintf("pvalues_%s.png", s.Name)); err != nil {
			return err
		}
		if err := plots.Volcano(s, DefaultVolcanoTop, fmt.Sprintf("volcano_%s.png", s.Name)); err != nil {
			return err
		}
	}

	return nil
}
