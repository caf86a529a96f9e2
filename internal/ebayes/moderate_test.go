package ebayes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprlab/godea/internal/fit"
)

func TestModerate_TStatisticOrdering(t *testing.T) {
	prior := Prior{DF: 10, Var: 0.25}
	cf := &fit.ContrastFit{
		Name:          "dox_wt",
		LogFC:         []float64{1.0, 1.0, 1.0},
		StdevUnscaled: math.Sqrt(2.0 / 3.0),
		Sigma2:        []float64{0.05, 0.25, 2.0},
		ResidDF:       8,
	}

	s := Moderate(cf, prior)
	require.Len(t, s.T, 3)
	assert.Equal(t, "dox_wt", s.Name)
	assert.Equal(t, 18.0, s.DFTotal)

	rawT := func(g int) float64 {
		return cf.LogFC[g] / (math.Sqrt(cf.Sigma2[g]) * cf.StdevUnscaled)
	}

	// Raw variance below the prior: moderation inflates the variance, so
	// the moderated t is smaller in magnitude.
	assert.Less(t, math.Abs(s.T[0]), math.Abs(rawT(0)))
	// At the prior: unchanged.
	assert.InDelta(t, rawT(1), s.T[1], 1e-12)
	// Above the prior: moderated t is larger in magnitude.
	assert.Greater(t, math.Abs(s.T[2]), math.Abs(rawT(2)))
}

func TestModerate_PValues(t *testing.T) {
	prior := Prior{DF: math.Inf(1), Var: 1.0}
	cf := &fit.ContrastFit{
		Name:          "c",
		LogFC:         []float64{0, 1.959963984540054, -8},
		StdevUnscaled: 1,
		Sigma2:        []float64{1, 1, 1},
		ResidDF:       8,
	}

	s := Moderate(cf, prior)

	assert.Equal(t, 1.0, s.P[0])
	// Infinite total df falls back to the normal: t=1.96 gives p ~ 0.05.
	assert.InDelta(t, 0.05, s.P[1], 1e-9)
	assert.Less(t, s.P[2], 1e-10)
	// Two-sided p is symmetric in sign.
	assert.Equal(t, s.P[1], twoSidedP(-cf.LogFC[1], s.DFTotal))
}

func TestModerate_ZeroVariance(t *testing.T) {
	prior := Prior{DF: 0, Var: 0}
	cf := &fit.ContrastFit{
		Name:          "c",
		LogFC:         []float64{2, 0},
		StdevUnscaled: 1,
		Sigma2:        []float64{0, 0},
		ResidDF:       8,
	}

	s := Moderate(cf, prior)

	assert.True(t, math.IsInf(s.T[0], 1))
	assert.Equal(t, 0.0, s.P[0])
	assert.Equal(t, 0.0, s.T[1])
	assert.Equal(t, 1.0, s.P[1])
}

func TestAdjustBH(t *testing.T) {
	p := []float64{0.005, 0.011, 0.02, 0.04, 0.045}
	adj := AdjustBH(p)

	want := []float64{0.025, 0.0275, 0.02 * 5 / 3, 0.045, 0.045}
	assert.InDeltaSlice(t, want, adj, 1e-12)

	// Adjusted values never drop below the raw p and never exceed 1.
	for i := range p {
		assert.GreaterOrEqual(t, adj[i], p[i])
		assert.LessOrEqual(t, adj[i], 1.0)
	}

	assert.Empty(t, AdjustBH(nil))
	assert.Equal(t, []float64{1.0}, AdjustBH([]float64{1.0}))
}

func TestDecideAndCallCounts(t *testing.T) {
	s := &Stats{
		Name:  "c",
		LogFC: []float64{2.0, -1.5, 0.3, -0.2, 0.0},
		P:     []float64{0.0001, 0.0002, 0.2, 0.9, 0.00001},
	}

	s.Decide(DefaultAlpha)

	require.Len(t, s.Calls, 5)
	assert.Equal(t, CallUp, s.Calls[0])
	assert.Equal(t, CallDown, s.Calls[1])
	assert.Equal(t, CallNotSig, s.Calls[2])
	assert.Equal(t, CallNotSig, s.Calls[3])
	// Significant but zero fold change stays not-significant.
	assert.Equal(t, CallNotSig, s.Calls[4])

	up, down, ns := s.CallCounts()
	assert.Equal(t, 1, up)
	assert.Equal(t, 1, down)
	assert.Equal(t, 3, ns)
	assert.Equal(t, len(s.Calls), up+down+ns)

	assert.Equal(t, "up", CallUp.String())
	assert.Equal(t, "down", CallDown.String())
	assert.Equal(t, "ns", CallNotSig.String())
}
