package fetcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is a header row plus data rows read from a workbook or CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header cell equal to name after trimming
// surrounding space, or -1.
func (t *Table) Column(name string) int {
	want := strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.TrimSpace(h) == want {
			return i
		}
	}
	return -1
}

// TableOptions selects what to read from a file.
type TableOptions struct {
	// Sheet names the XLSX worksheet. Empty means the first sheet.
	Sheet string
	// Delimiter for CSV files. Zero means ','.
	Delimiter rune
}

// ReadTable reads path as XLSX or CSV depending on its extension.
func ReadTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet})
	case ".csv", ".txt":
		return ReadCSVFile(ctx, path, CSVOptions{Delimiter: opts.Delimiter, TrimSpace: true})
	default:
		return nil, eris.Errorf("fetcher: unsupported table format %q", filepath.Ext(path))
	}
}

func newTable(rows [][]string) (*Table, error) {
	for i, row := range rows {
		if !blank(row) {
			return &Table{Header: row, Rows: rows[i+1:]}, nil
		}
	}
	return nil, eris.New("fetcher: table has no header row")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
