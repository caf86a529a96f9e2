// Package ebayes moderates per-gene variance estimates by empirical Bayes
// shrinkage toward a pooled prior, and derives moderated t-statistics,
// p-values, multiple-testing adjusted p-values and significance calls.
package ebayes

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Prior is the scaled-F prior fitted to the per-gene variances. DF may be
// +Inf, in which case every posterior variance equals Var.
type Prior struct {
	DF  float64
	Var float64
}

// FitFDist fits a scaled F-distribution to the per-gene sample variances s2
// with df residual degrees of freedom each, by matching the first two
// moments of log(s2). Non-positive or non-finite variances are excluded
// from moment estimation.
func FitFDist(s2 []float64, df float64) (Prior, error) {
	if df <= 0 {
		return Prior{}, fmt.Errorf("ebayes: residual degrees of freedom must be positive, got %v", df)
	}

	offset := mathext.Digamma(df/2) - math.Log(df/2)

	e := make([]float64, 0, len(s2))
	var sum float64
	for _, v := range s2 {
		if v > 0 && !math.IsInf(v, 1) {
			z := math.Log(v) - offset
			e = append(e, z)
			sum += z
		}
	}
	if len(e) == 0 {
		return Prior{}, fmt.Errorf("ebayes: no positive finite variances to fit")
	}

	emean := sum / float64(len(e))
	if len(e) == 1 {
		return Prior{DF: math.Inf(1), Var: math.Exp(emean)}, nil
	}

	var ss float64
	for _, z := range e {
		d := z - emean
		ss += d * d
	}
	evar := ss/float64(len(e)-1) - trigamma(df/2)

	if evar > 0 {
		d0 := 2 * trigammaInverse(evar)
		s02 := math.Exp(emean + mathext.Digamma(d0/2) - math.Log(d0/2))
		return Prior{DF: d0, Var: s02}, nil
	}

	// Observed log-variances are less spread than the sampling error alone
	// allows; the prior is effectively a point mass.
	return Prior{DF: math.Inf(1), Var: math.Exp(emean)}, nil
}

// SqueezeVar shrinks each sample variance toward the prior:
//
//	post = (d0*s0^2 + df*s2) / (d0 + df)
//
// With an infinite prior df all posterior variances equal the prior.
func SqueezeVar(s2 []float64, df float64, p Prior) []float64 {
	post := make([]float64, len(s2))
	if math.IsInf(p.DF, 1) {
		for i := range post {
			post[i] = p.Var
		}
		return post
	}
	for i, v := range s2 {
		post[i] = (p.DF*p.Var + df*v) / (p.DF + df)
	}
	return post
}

// trigamma returns the second derivative of log Gamma at x, for x > 0, by
// recurrence into the asymptotic regime.
func trigamma(x float64) float64 {
	var acc float64
	for x < 8 {
		acc += 1 / (x * x)
		x++
	}
	z := 1 / (x * x)
	return acc + 1/x + z/2 + z/x*(1.0/6-z*(1.0/30-z*(1.0/42-z/30)))
}

// tetragamma returns the third derivative of log Gamma at x, for x > 0.
// Always negative on the positive axis.
func tetragamma(x float64) float64 {
	var acc float64
	for x < 8 {
		acc -= 2 / (x * x * x)
		x++
	}
	z := 1 / (x * x)
	return acc - z - z/x - z*z*(0.5-z*(1.0/6-z/6))
}

// trigammaInverse solves trigamma(x) = y for x > 0 by Newton iteration.
func trigammaInverse(y float64) float64 {
	if y > 1e7 {
		return 1 / math.Sqrt(y)
	}
	if y < 1e-6 {
		return 1 / y
	}

	x := 0.5 + 1/y
	for i := 0; i < 50; i++ {
		tri := trigamma(x)
		dif := tri * (1 - tri/y) / tetragamma(x)
		x += dif
		if -dif/x < 1e-8 {
			break
		}
	}
	return x
}
