// Package enrich tests pathways for over-representation among
// differentially expressed genes.
package enrich

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/exprlab/godea/internal/exprtab"
)

// Pathway database column names.
const (
	ColPathwayID   = "pathway_id"
	ColPathwayName = "pathway_name"
	ColPathwayGene = "entrez_id"
)

// Pathway is one gene set: its identifier, display name and member genes
// keyed by external (Entrez) identifier.
type Pathway struct {
	ID      string
	Name    string
	Members map[string]bool
}

// DB is a loaded pathway database, in file order.
type DB struct {
	Pathways []Pathway
}

// Load reads a tab-delimited pathway membership table with columns
// pathway_id, pathway_name and entrez_id, one row per pathway-gene pair.
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pathway table: %w", err)
	}
	defer f.Close()

	return Read(f, path)
}

// Read parses a pathway membership table from r. path is used in error
// messages only.
func Read(r io.Reader, path string) (*DB, error) {
	br := bufio.NewScanner(r)
	br.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	var cols map[string]int
	byID := make(map[string]int)
	db := &DB{}

	for br.Scan() {
		lineNumber++
		line := strings.TrimRight(br.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")

		if cols == nil {
			cols = make(map[string]int, len(fields))
			for i, name := range fields {
				cols[strings.ToLower(name)] = i
			}
			for _, name := range []string{ColPathwayID, ColPathwayName, ColPathwayGene} {
				if _, ok := cols[name]; !ok {
					return nil, &exprtab.ParseError{
						Path:    path,
						Line:    lineNumber,
						Message: fmt.Sprintf("required column %q not found in header", name),
					}
				}
			}
			continue
		}

		if len(fields) < len(cols) {
			return nil, &exprtab.ParseError{
				Path:    path,
				Line:    lineNumber,
				Message: fmt.Sprintf("expected %d columns, found %d", len(cols), len(fields)),
			}
		}

		id := fields[cols[ColPathwayID]]
		idx, ok := byID[id]
		if !ok {
			idx = len(db.Pathways)
			byID[id] = idx
			db.Pathways = append(db.Pathways, Pathway{
				ID:      id,
				Name:    fields[cols[ColPathwayName]],
				Members: make(map[string]bool),
			})
		}
		db.Pathways[idx].Members[fields[cols[ColPathwayGene]]] = true
	}
	if err := br.Err(); err != nil {
		return nil, fmt.Errorf("read pathway table: %w", err)
	}
	if cols == nil {
		return nil, &exprtab.ParseError{Path: path, Line: lineNumber, Message: "no header line found"}
	}

	return db, nil
}
