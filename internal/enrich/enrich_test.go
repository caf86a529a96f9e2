package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprlab/godea/internal/exprtab"
)

const pathwayTable = `pathway_id	pathway_name	entrez_id
mmu04110	Cell cycle	100
mmu04110	Cell cycle	101
mmu04110	Cell cycle	102
mmu04115	p53 signaling pathway	102
mmu04115	p53 signaling pathway	103
mmu00010	Glycolysis	900
`

func TestRead(t *testing.T) {
	db, err := Read(strings.NewReader(pathwayTable), "kegg.tsv")
	require.NoError(t, err)
	require.Len(t, db.Pathways, 3)

	assert.Equal(t, "mmu04110", db.Pathways[0].ID)
	assert.Equal(t, "Cell cycle", db.Pathways[0].Name)
	assert.Len(t, db.Pathways[0].Members, 3)
	assert.True(t, db.Pathways[1].Members["103"])
}

func TestRead_MissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("pathway_id\tentrez_id\nx\t1\n"), "bad.tsv")
	var perr *exprtab.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, `required column "pathway_name"`)
}

func TestRead_Empty(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty.tsv")
	var perr *exprtab.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "no header")
}

func TestHyperUpperTail(t *testing.T) {
	// All 5 draws hit all 5 members of a 10-gene universe: 1/C(10,5).
	assert.InDelta(t, 1.0/252.0, hyperUpperTail(10, 5, 5, 5), 1e-12)

	// Fisher upper tail, checked by hand:
	// (C(8,4)C(16,2)+C(8,5)C(16,1)+C(8,6)C(16,0))/C(24,6) = 9324/134596.
	assert.InDelta(t, 9324.0/134596.0, hyperUpperTail(24, 8, 6, 4), 1e-12)

	assert.Equal(t, 1.0, hyperUpperTail(10, 5, 5, 0))
	assert.Equal(t, 0.0, hyperUpperTail(10, 2, 2, 3))
}

func TestTest_RanksEnrichedPathwayFirst(t *testing.T) {
	db, err := Read(strings.NewReader(pathwayTable), "kegg.tsv")
	require.NoError(t, err)

	universe := map[string]bool{}
	for _, id := range []string{"100", "101", "102", "103", "900", "901", "902", "903", "904", "905"} {
		universe[id] = true
	}
	// The selected set is exactly the cell-cycle pathway.
	selected := map[string]bool{"100": true, "101": true, "102": true}

	results := db.Test(universe, selected)
	require.Len(t, results, 3)

	assert.Equal(t, "mmu04110", results[0].PathwayID)
	assert.Equal(t, 3, results[0].Overlap)
	assert.Equal(t, 3, results[0].NPathway)
	assert.Equal(t, 3, results[0].NDE)
	// P = 1/C(10,3).
	assert.InDelta(t, 1.0/120.0, results[0].P, 1e-12)

	// Results are sorted by ascending p.
	assert.LessOrEqual(t, results[0].P, results[1].P)
	assert.LessOrEqual(t, results[1].P, results[2].P)

	top := TopN(results, 2)
	assert.Len(t, top, 2)
	assert.Len(t, TopN(results, 10), 3)
}

func TestTest_MembersOutsideUniverseIgnored(t *testing.T) {
	db, err := Read(strings.NewReader(pathwayTable), "kegg.tsv")
	require.NoError(t, err)

	// Universe lacks gene 900, so the glycolysis pathway drops out entirely.
	universe := map[string]bool{"100": true, "101": true, "102": true, "103": true}
	selected := map[string]bool{"100": true}

	results := db.Test(universe, selected)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "mmu00010", r.PathwayID)
	}
}
