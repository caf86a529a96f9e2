package design

import "fmt"

// Standard contrast names.
const (
	ContrastDoxWT       = "dox_wt"
	ContrastDoxTop2b    = "dox_top2b"
	ContrastInteraction = "interaction"
)

// Contrast is a named linear combination of design columns. Coef has one
// entry per design column.
type Contrast struct {
	Name string
	Coef []float64
}

// Describe returns a human-readable form like "wt.dox - wt.pbs".
func (c Contrast) Describe(d *Design) string {
	var plus, minus string
	for i, v := range c.Coef {
		switch {
		case v > 0:
			if plus != "" {
				plus += " + "
			}
			plus += d.Levels[i]
		case v < 0:
			if minus != "" {
				minus += " - "
			}
			minus += d.Levels[i]
		}
	}
	if minus == "" {
		return plus
	}
	return plus + " - (" + minus + ")"
}

// StandardContrasts builds the three contrasts of the 2x2 analysis:
//
//	dox_wt      = wt.dox - wt.pbs
//	dox_top2b   = top2b.dox - top2b.pbs
//	interaction = (top2b.dox - top2b.pbs) - (wt.dox - wt.pbs)
//
// All four factor levels must be present in the design.
func StandardContrasts(d *Design) ([]Contrast, error) {
	col := func(level string) (int, error) {
		i := d.Column(level)
		if i < 0 {
			return 0, fmt.Errorf("design: level %q not present, cannot form contrasts", level)
		}
		return i, nil
	}

	wtPBS, err := col("wt.pbs")
	if err != nil {
		return nil, err
	}
	wtDox, err := col("wt.dox")
	if err != nil {
		return nil, err
	}
	t2bPBS, err := col("top2b.pbs")
	if err != nil {
		return nil, err
	}
	t2bDox, err := col("top2b.dox")
	if err != nil {
		return nil, err
	}

	p := len(d.Levels)
	doxWT := make([]float64, p)
	doxWT[wtDox], doxWT[wtPBS] = 1, -1

	doxT2b := make([]float64, p)
	doxT2b[t2bDox], doxT2b[t2bPBS] = 1, -1

	inter := make([]float64, p)
	inter[t2bDox], inter[t2bPBS] = 1, -1
	inter[wtDox], inter[wtPBS] = -1, 1

	return []Contrast{
		{Name: ContrastDoxWT, Coef: doxWT},
		{Name: ContrastDoxTop2b, Coef: doxT2b},
		{Name: ContrastInteraction, Coef: inter},
	}, nil
}
