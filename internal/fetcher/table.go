package fetcher

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableOptions configures ReadTable.
type TableOptions struct {
	// SheetName selects the XLSX sheet; the first sheet is used when empty.
	SheetName string
}

// ReadTable reads a .csv, .tsv or .xlsx file. The first row is the header.
func ReadTable(path string, opts TableOptions) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".tsv":
		f, openErr := os.Open(path) //nolint:gosec // path comes from the operator
		if openErr != nil {
			return nil, eris.Wrap(openErr, "fetcher: open table")
		}
		defer f.Close() //nolint:errcheck

		csvOpts := CSVOptions{TrimSpace: true, LazyQuotes: true}
		if ext == ".tsv" {
			csvOpts.Delimiter = '\t'
		}
		rows, err = ReadCSV(f, csvOpts)
	case ".xlsx":
		rows, err = ReadXLSX(path, XLSXOptions{SheetName: opts.SheetName})
	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", filepath.Base(path))
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("fetcher: %s has no header row", filepath.Base(path))
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return &Table{Header: header, Rows: rows[1:]}, nil
}

// Reader returns a record reader over the header and rows, in the shape
// csv.Reader exposes, for decoders that consume records one at a time.
func (t *Table) Reader() *TableReader {
	return &TableReader{t: t, pos: -1}
}

// TableReader yields the header and then each row.
type TableReader struct {
	t   *Table
	pos int
}

// Read returns the next record or io.EOF.
func (r *TableReader) Read() ([]string, error) {
	if r.pos < 0 {
		r.pos = 0
		return r.t.Header, nil
	}
	if r.pos >= len(r.t.Rows) {
		return nil, io.EOF
	}
	row := r.t.Rows[r.pos]
	r.pos++
	return fitRow(row, len(r.t.Header)), nil
}

// fitRow pads short rows to n fields and drops blank trailing cells past n.
// Rows with data past n are returned as-is.
func fitRow(row []string, n int) []string {
	if len(row) > n && blank(row[n:]) {
		return row[:n]
	}
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
