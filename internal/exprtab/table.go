// Package exprtab provides parsing for the three delimited tables of an
// expression experiment: the expression matrix, the sample metadata and the
// feature (gene) metadata.
package exprtab

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix holds a parsed expression matrix: genes (rows) by samples (columns).
type Matrix struct {
	GeneIDs   []string
	SampleIDs []string
	Values    *mat.Dense
}

// reader wraps a possibly gzipped file for line reading.
type reader struct {
	br         *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// openReader opens path for reading, transparently handling gzip.
// Use "-" for stdin.
func openReader(path string) (*reader, error) {
	if path == "-" {
		return &reader{br: bufio.NewReader(os.Stdin)}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}

	r := &reader{file: file}

	// Check for gzip magic bytes (0x1f, 0x8b)
	buf := make([]byte, 2)
	if _, err := file.Read(buf); err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek table: %w", err)
	}

	if buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.br = bufio.NewReader(r.gzipReader)
	} else {
		r.br = bufio.NewReader(file)
	}

	return r, nil
}

// next returns the next non-empty, non-comment line, or io.EOF.
func (r *reader) next() (string, error) {
	for {
		line, err := r.br.ReadString('\n')
		if err != nil {
			if err == io.EOF && line != "" {
				r.lineNumber++
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", err
		}
		r.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
}

func (r *reader) close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadMatrix reads a tab-delimited expression matrix. The first line is a
// header whose first field names the identifier column and whose remaining
// fields are sample identifiers. Each data line is a gene identifier
// followed by one value per sample.
func ReadMatrix(path string) (*Matrix, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.close()

	header, err := r.next()
	if err != nil {
		if err == io.EOF {
			return nil, &ParseError{Path: path, Line: r.lineNumber, Message: "no header line found"}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	fields := strings.Split(header, "\t")
	if len(fields) < 2 {
		return nil, &ParseError{Path: path, Line: r.lineNumber, Message: "header must name at least one sample column"}
	}
	sampleIDs := fields[1:]

	var (
		geneIDs []string
		values  []float64
	)
	for {
		line, err := r.next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read matrix line: %w", err)
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(sampleIDs)+1 {
			return nil, &ParseError{
				Path:    path,
				Line:    r.lineNumber,
				Message: fmt.Sprintf("expected %d columns, found %d", len(sampleIDs)+1, len(fields)),
			}
		}

		geneIDs = append(geneIDs, fields[0])
		for _, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &ParseError{
					Path:    path,
					Line:    r.lineNumber,
					Message: fmt.Sprintf("invalid expression value %q", f),
				}
			}
			values = append(values, v)
		}
	}

	if len(geneIDs) == 0 {
		return nil, &ParseError{Path: path, Line: r.lineNumber, Message: "matrix has no data rows"}
	}

	return &Matrix{
		GeneIDs:   geneIDs,
		SampleIDs: sampleIDs,
		Values:    mat.NewDense(len(geneIDs), len(sampleIDs), values),
	}, nil
}

// ParseError represents an error during table parsing with line context.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error at line %d: %s", e.Path, e.Line, e.Message)
}
