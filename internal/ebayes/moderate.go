package ebayes

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/exprlab/godea/internal/fit"
)

// Stats holds the moderated test results for one contrast, in gene order.
type Stats struct {
	Name    string
	LogFC   []float64
	PostVar []float64
	T       []float64
	P       []float64
	AdjP    []float64
	Calls   []Call
	// DFTotal is the residual df plus the prior df, possibly +Inf.
	DFTotal float64
}

// Moderate shrinks the contrast fit's per-gene variances toward the prior
// and computes moderated t-statistics with two-sided p-values on
// residual+prior degrees of freedom.
func Moderate(cf *fit.ContrastFit, prior Prior) *Stats {
	post := SqueezeVar(cf.Sigma2, cf.ResidDF, prior)
	dfTotal := cf.ResidDF + prior.DF

	s := &Stats{
		Name:    cf.Name,
		LogFC:   cf.LogFC,
		PostVar: post,
		T:       make([]float64, len(cf.LogFC)),
		P:       make([]float64, len(cf.LogFC)),
		DFTotal: dfTotal,
	}

	for g, lfc := range cf.LogFC {
		se := math.Sqrt(post[g]) * cf.StdevUnscaled
		switch {
		case se > 0:
			s.T[g] = lfc / se
		case lfc == 0:
			s.T[g] = 0
		default:
			s.T[g] = math.Inf(1) * math.Copysign(1, lfc)
		}
		s.P[g] = twoSidedP(s.T[g], dfTotal)
	}

	return s
}

// twoSidedP returns the two-sided tail probability of t under a Student's t
// distribution with df degrees of freedom, falling back to the normal when
// df is infinite.
func twoSidedP(t, df float64) float64 {
	at := math.Abs(t)
	if math.IsInf(at, 1) {
		return 0
	}

	var p float64
	if math.IsInf(df, 1) {
		p = 2 * distuv.UnitNormal.Survival(at)
	} else {
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		p = 2 * dist.Survival(at)
	}
	if p > 1 {
		p = 1
	}
	return p
}
