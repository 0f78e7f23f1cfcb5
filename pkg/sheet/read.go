package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, upload .xlsx or .csv")
	ErrNoData            = errors.New("file must have header row and at least one data row")
)

// Table is an imported sheet: a header row and the data rows below it
type Table struct {
	columns map[string]int
	Rows    [][]string
}

// Read parses the first sheet of an xlsx workbook or a csv file, chosen by extension
func Read(r io.Reader, filename string) (*Table, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readExcel(r)
	case ".csv":
		records, err = csv.NewReader(r).ReadAll()
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, ErrNoData
	}

	t := &Table{columns: make(map[string]int)}
	for i, cell := range records[0] {
		t.columns[normalize(cell)] = i
	}
	for _, row := range records[1:] {
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in file")
	}
	return f.GetRows(sheets[0])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Value returns the trimmed cell of row under the first header matching one of names
func (t *Table) Value(row []string, names ...string) string {
	for _, name := range names {
		if idx, ok := t.columns[normalize(name)]; ok {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
	}
	return ""
}
