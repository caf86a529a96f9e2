package exprtab

import (
	"fmt"
	"io"
	"strings"
)

// Recognised factor levels.
const (
	GenotypeWT    = "wt"
	GenotypeTop2b = "top2b"
	TreatmentPBS  = "pbs"
	TreatmentDox  = "dox"
)

// Sample metadata column names.
const (
	ColSampleGenotype  = "genotype"
	ColSampleTreatment = "treatment"
)

// Feature metadata column names.
const (
	ColFeatureSymbol = "symbol"
	ColFeatureEntrez = "entrez_id"
)

// Sample describes one array: its identifier and the two experimental factors.
type Sample struct {
	ID        string
	Genotype  string
	Treatment string
}

// Group returns the combined factor level, e.g. "wt.dox".
func (s Sample) Group() string {
	return s.Genotype + "." + s.Treatment
}

// Feature describes one gene: its row identifier, a display symbol, and the
// external database identifier used for pathway lookup. EntrezID may be
// empty for unannotated probes.
type Feature struct {
	ID       string
	Symbol   string
	EntrezID string
}

// ReadSamples reads tab-delimited sample metadata. The first header field
// names the identifier column; "genotype" and "treatment" columns are
// required. Factor levels are validated against the recognised set.
func ReadSamples(path string) ([]Sample, error) {
	rows, cols, err := readKeyed(path, []string{ColSampleGenotype, ColSampleTreatment})
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, len(rows))
	for i, row := range rows {
		s := Sample{
			ID:        row.id,
			Genotype:  strings.ToLower(row.fields[cols[ColSampleGenotype]]),
			Treatment: strings.ToLower(row.fields[cols[ColSampleTreatment]]),
		}
		switch s.Genotype {
		case GenotypeWT, GenotypeTop2b:
		default:
			return nil, &ParseError{
				Path:    path,
				Line:    row.line,
				Message: fmt.Sprintf("unknown genotype %q for sample %q", s.Genotype, s.ID),
			}
		}
		switch s.Treatment {
		case TreatmentPBS, TreatmentDox:
		default:
			return nil, &ParseError{
				Path:    path,
				Line:    row.line,
				Message: fmt.Sprintf("unknown treatment %q for sample %q", s.Treatment, s.ID),
			}
		}
		samples[i] = s
	}

	return samples, nil
}

// ReadFeatures reads tab-delimited feature metadata. The first header field
// names the identifier column; a "symbol" column is required and an
// "entrez_id" column is optional.
func ReadFeatures(path string) ([]Feature, error) {
	rows, cols, err := readKeyed(path, []string{ColFeatureSymbol})
	if err != nil {
		return nil, err
	}

	entrezIdx, hasEntrez := cols[ColFeatureEntrez]

	features := make([]Feature, len(rows))
	for i, row := range rows {
		f := Feature{
			ID:     row.id,
			Symbol: row.fields[cols[ColFeatureSymbol]],
		}
		if hasEntrez {
			id := row.fields[entrezIdx]
			if id != "NA" {
				f.EntrezID = id
			}
		}
		features[i] = f
	}

	return features, nil
}

// keyedRow is one parsed metadata line.
type keyedRow struct {
	id     string
	fields []string
	line   int
}

// readKeyed reads a tab-delimited table with an identifier first column and
// returns its rows together with a name-to-index map of the remaining
// columns. Columns named in required must be present.
func readKeyed(path string, required []string) ([]keyedRow, map[string]int, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, nil, err
	}
	defer r.close()

	header, err := r.next()
	if err != nil {
		if err == io.EOF {
			return nil, nil, &ParseError{Path: path, Line: r.lineNumber, Message: "no header line found"}
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	names := strings.Split(header, "\t")
	cols := make(map[string]int, len(names)-1)
	for i, name := range names[1:] {
		cols[strings.ToLower(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, &ParseError{
				Path:    path,
				Line:    r.lineNumber,
				Message: fmt.Sprintf("required column %q not found in header", name),
			}
		}
	}

	var rows []keyedRow
	for {
		line, err := r.next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("read metadata line: %w", err)
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(names) {
			return nil, nil, &ParseError{
				Path:    path,
				Line:    r.lineNumber,
				Message: fmt.Sprintf("expected %d columns, found %d", len(names), len(fields)),
			}
		}
		rows = append(rows, keyedRow{id: fields[0], fields: fields[1:], line: r.lineNumber})
	}

	if len(rows) == 0 {
		return nil, nil, &ParseError{Path: path, Line: r.lineNumber, Message: "table has no data rows"}
	}

	return rows, cols, nil
}
