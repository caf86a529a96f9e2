package exprtab

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMatrix(t *testing.T) {
	m, err := ReadMatrix(filepath.Join("testdata", "matrix.tsv"))
	require.NoError(t, err)

	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, m.GeneIDs)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, m.SampleIDs)

	rows, cols := m.Values.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, 5.1, m.Values.At(0, 0))
	assert.Equal(t, 3.4, m.Values.At(3, 3))
}

func TestReadMatrix_Gzipped(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("testdata", "matrix.tsv"))
	require.NoError(t, err)

	gzPath := filepath.Join(t.TempDir(), "matrix.tsv.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	m, err := ReadMatrix(gzPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2", "g3", "g4"}, m.GeneIDs)
	assert.Equal(t, 7.2, m.Values.At(0, 2))
}

func TestReadMatrix_RaggedRow(t *testing.T) {
	path := writeTemp(t, "bad.tsv", "gene_id\ts1\ts2\ng1\t1.0\n")

	_, err := ReadMatrix(path)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Message, "expected 3 columns")
}

func TestReadMatrix_BadValue(t *testing.T) {
	path := writeTemp(t, "bad.tsv", "gene_id\ts1\ng1\tnot-a-number\n")

	_, err := ReadMatrix(path)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "invalid expression value")
}

func TestReadSamples(t *testing.T) {
	samples, err := ReadSamples(filepath.Join("testdata", "samples.tsv"))
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, Sample{ID: "s1", Genotype: "wt", Treatment: "pbs"}, samples[0])
	assert.Equal(t, "top2b.dox", samples[3].Group())
}

func TestReadSamples_UnknownLevel(t *testing.T) {
	path := writeTemp(t, "samples.tsv", "sample_id\tgenotype\ttreatment\ns1\tko\tpbs\n")

	_, err := ReadSamples(path)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, `unknown genotype "ko"`)
}

func TestReadFeatures(t *testing.T) {
	features, err := ReadFeatures(filepath.Join("testdata", "features.tsv"))
	require.NoError(t, err)
	require.Len(t, features, 4)

	assert.Equal(t, Feature{ID: "g1", Symbol: "Top2b", EntrezID: "21974"}, features[0])
	// NA entrez ids are treated as missing
	assert.Empty(t, features[2].EntrezID)
}

func TestReadSamples_MissingColumn(t *testing.T) {
	path := writeTemp(t, "samples.tsv", "sample_id\tgenotype\ns1\twt\n")

	_, err := ReadSamples(path)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, `required column "treatment"`)
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
