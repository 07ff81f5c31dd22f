package table

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// ParseCSV reads a CSV file with a header row.
func ParseCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, serrors.ParseWrap(err, serrors.ErrParseFailed, "failed to read csv").
			WithContext("file", name)
	}
	return FromRecords(name, records)
}

// ParseXLSX reads the first sheet of a workbook. The first row is the header.
func ParseXLSX(name string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, serrors.ParseWrap(err, serrors.ErrParseFailed, "failed to open workbook").
			WithContext("file", name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, serrors.Parse(serrors.ErrParseNoHeader, "workbook has no sheets").
			WithContext("file", name)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, serrors.ParseWrap(err, serrors.ErrParseFailed, "failed to read sheet").
			WithContext("file", name).
			WithContext("sheet", sheets[0])
	}
	return FromRecords(name, rows)
}

// IsWorkbook reports whether a file name is an .xlsx workbook.
func IsWorkbook(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

// CSVName swaps a file name's extension for .csv.
func CSVName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
}
