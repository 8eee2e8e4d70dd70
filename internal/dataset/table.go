package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyFile is returned when a source file has no header row.
var ErrEmptyFile = errors.New("empty file")

// ReadOptions controls how a delimited source file is decoded.
type ReadOptions struct {
	// Encoding of the file bytes: latin1, windows-1252 or utf-8.
	Encoding string
	// Delimiter for CSV. If 0, derived from the file extension (',' or '\t' for .tsv).
	Delimiter rune
}

// DefaultReadOptions matches the registry exports: latin1, comma separated.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Encoding: "latin1", Delimiter: ','}
}

// Table is a schema-on-read view of one delimited file. It is never mutated after load.
type Table struct {
	Name        string
	Path        string
	Header      []string
	Rows        [][]string
	Fingerprint string

	index map[string]int
}

// Column returns the index of the named header cell.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the cell at row/col, or "" when col is out of range.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ReadCSV reads a delimited file from disk.
func ReadCSV(path string, opt ReadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSVFrom(f, filepath.Base(path), opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	t.Path = path
	return t, nil
}

// ReadCSVFrom decodes r with the configured encoding and reads every row.
func ReadCSVFrom(r io.Reader, name string, opt ReadOptions) (*Table, error) {
	dec, err := decodingReader(r, opt.Encoding)
	if err != nil {
		return nil, err
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &Table{Name: name, Header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	ncol := len(t.Header)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]string, ncol)
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
