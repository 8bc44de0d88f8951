// Package ingest reads delimited open-data extracts into header-keyed records.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn is returned when a record has no value for a requested column.
var ErrMissingColumn = eris.New("missing column")

const bom = "\ufeff"

// Options configures the CSV parser.
type Options struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// Table is a parsed CSV file: its header row plus one Record per data row.
type Table struct {
	Header  []string
	Records []Record
}

// Record is one data row. Values are looked up by header name.
type Record struct {
	index  map[string]int
	values []string

	// Line is the 1-based line number of the row in the source file.
	Line int
}

// Get returns the value of the named column. A column absent from the
// header, or a row too short to hold it, yields ErrMissingColumn.
func (r Record) Get(col string) (string, error) {
	idx, ok := r.index[col]
	if !ok || idx >= len(r.values) {
		return "", eris.Wrapf(ErrMissingColumn, "line %d: %q", r.Line, col)
	}
	return r.values[idx], nil
}

// Lookup returns the value of the named column and whether it was present.
func (r Record) Lookup(col string) (string, bool) {
	idx, ok := r.index[col]
	if !ok || idx >= len(r.values) {
		return "", false
	}
	return r.values[idx], true
}

// Len returns the number of values in the row.
func (r Record) Len() int {
	return len(r.values)
}

// NewRecord builds a standalone record from a header and its values.
// Useful for callers that assemble rows outside of Read.
func NewRecord(header, values []string) Record {
	return Record{index: headerIndex(header), values: values}
}

// ReadFile opens path and parses it with the default options.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close()

	t, err := Read(f, Options{LazyQuotes: true})
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}
	return t, nil
}

// Read parses CSV text with a header row. Input is decoded as UTF-8 with a
// leading byte-order mark removed; a UTF-16 BOM switches decoding to UTF-16.
// Empty input yields an empty table.
func Read(r io.Reader, opts Options) (*Table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	header = cleanHeader(header)
	index := headerIndex(header)

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		line, _ := reader.FieldPos(0)
		t.Records = append(t.Records, Record{index: index, values: row, Line: line})
	}

	return t, nil
}

// cleanHeader strips BOM artifacts that survive decoding, e.g. from files
// that were concatenated or re-encoded with the marker embedded.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.ReplaceAll(h, bom, "")
	}
	return out
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	// Later duplicates win, like assigning into a map row by row.
	for i, col := range header {
		idx[col] = i
	}
	return idx
}
