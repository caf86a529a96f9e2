package duckdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprlab/godea/internal/ebayes"
	"github.com/exprlab/godea/internal/exprtab"
)

func testStats() ([]exprtab.Feature, *ebayes.Stats) {
	features := []exprtab.Feature{
		{ID: "g1", Symbol: "Top2b"},
		{ID: "g2", Symbol: "Actb"},
		{ID: "g3", Symbol: "Myc"},
	}
	s := &ebayes.Stats{
		Name:  "dox_wt",
		LogFC: []float64{2.5, -1.2, 0.1},
		T:     []float64{8.1, -5.5, 0.4},
		P:     []float64{1e-6, 1e-4, 0.7},
		AdjP:  []float64{3e-6, 1.5e-4, 0.8},
		Calls: []ebayes.Call{ebayes.CallUp, ebayes.CallDown, ebayes.CallNotSig},
	}
	return features, s
}

func TestStore_WriteAndReadBack(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	features, stats := testStats()
	require.NoError(t, store.WriteContrastResults(features, stats))

	up, down, ns, err := store.CallCounts("dox_wt")
	require.NoError(t, err)
	assert.Equal(t, 1, up)
	assert.Equal(t, 1, down)
	assert.Equal(t, 1, ns)

	names, err := store.Contrasts()
	require.NoError(t, err)
	assert.Equal(t, []string{"dox_wt"}, names)

	var logFC float64
	err = store.DB().QueryRow(
		`SELECT log_fc FROM contrast_results WHERE contrast = ? AND gene_id = ?`,
		"dox_wt", "g1").Scan(&logFC)
	require.NoError(t, err)
	assert.Equal(t, 2.5, logFC)
}

func TestStore_ReExportReplaces(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	features, stats := testStats()
	require.NoError(t, store.WriteContrastResults(features, stats))
	require.NoError(t, store.WriteContrastResults(features, stats))

	var n int
	err = store.DB().QueryRow(`SELECT COUNT(*) FROM contrast_results`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_LengthMismatch(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	defer store.Close()

	features, stats := testStats()
	err = store.WriteContrastResults(features[:2], stats)
	assert.Error(t, err)
}

func TestStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "results.duckdb")

	store, err := Open(path)
	require.NoError(t, err)

	features, stats := testStats()
	require.NoError(t, store.WriteContrastResults(features, stats))
	require.NoError(t, store.Close())

	// Reopen and read back.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	names, err := store.Contrasts()
	require.NoError(t, err)
	assert.Equal(t, []string{"dox_wt"}, names)
}
