// Package export writes series data for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// CSVDialect specifies the CSV format variant.
type CSVDialect string

const (
	// DialectStandard uses RFC 4180 compliant CSV (comma-separated, quoted strings).
	DialectStandard CSVDialect = "standard"

	// DialectExcel adds a UTF-8 byte order mark and CRLF line endings.
	DialectExcel CSVDialect = "excel"

	// DialectTSV uses tab-separated values instead of comma.
	DialectTSV CSVDialect = "tsv"
)

// ParseDialect maps a name to a dialect. The empty string is standard.
func ParseDialect(name string) (CSVDialect, error) {
	switch d := CSVDialect(name); d {
	case "", DialectStandard:
		return DialectStandard, nil
	case DialectExcel, DialectTSV:
		return d, nil
	default:
		return "", fmt.Errorf("unknown csv dialect %q", name)
	}
}

// ContentType returns the MIME type for the dialect.
func (d CSVDialect) ContentType() string {
	if d == DialectTSV {
		return "text/tab-separated-values; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Extension returns the file extension for the dialect.
func (d CSVDialect) Extension() string {
	if d == DialectTSV {
		return ".tsv"
	}
	return ".csv"
}

// CSVConfig specifies options for CSV export.
type CSVConfig struct {
	// Dialect specifies the CSV format variant.
	// Default: DialectStandard
	Dialect CSVDialect

	// IncludeHeader writes column headers as the first row.
	// Default: true
	IncludeHeader bool

	// IncludeIndex adds the source row index as the first column.
	// Default: true
	IncludeIndex bool

	// XName and YName are the header names of the two value columns.
	XName string
	YName string

	// Precision is the number of decimal places for values; -1 writes the
	// shortest exact representation.
	// Default: -1
	Precision int

	// NAString is the representation for non-finite values.
	// Default: "NA"
	NAString string
}

// DefaultCSVConfig returns a CSVConfig with sensible defaults.
func DefaultCSVConfig() *CSVConfig {
	return &CSVConfig{
		Dialect:       DialectStandard,
		IncludeHeader: true,
		IncludeIndex:  true,
		XName:         "x",
		YName:         "y",
		Precision:     -1,
		NAString:      "NA",
	}
}

// SeriesRow is one exported point.
type SeriesRow struct {
	Index int
	X     float64
	Y     float64
}

// CSVWriter writes series rows to CSV format.
type CSVWriter struct {
	config      *CSVConfig
	out         io.Writer
	writer      *csv.Writer
	headerDone  bool
	bomDone     bool
	rowsWritten int
}

// NewCSVWriter creates a new CSVWriter that writes to the given io.Writer.
// If config is nil, DefaultCSVConfig() is used.
func NewCSVWriter(w io.Writer, config *CSVConfig) *CSVWriter {
	if config == nil {
		config = DefaultCSVConfig()
	}

	csvWriter := csv.NewWriter(w)
	switch config.Dialect {
	case DialectTSV:
		csvWriter.Comma = '\t'
	case DialectExcel:
		csvWriter.UseCRLF = true
	}

	return &CSVWriter{
		config: config,
		out:    w,
		writer: csvWriter,
	}
}

// WriteHeader writes the CSV header row.
// This is called automatically on first Write if IncludeHeader is true.
func (cw *CSVWriter) WriteHeader() error {
	if cw.headerDone {
		return nil
	}
	if err := cw.writeBOM(); err != nil {
		return err
	}

	var headers []string
	if cw.config.IncludeIndex {
		headers = append(headers, "index")
	}
	headers = append(headers, nameOr(cw.config.XName, "x"), nameOr(cw.config.YName, "y"))

	if err := cw.writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	cw.headerDone = true
	return nil
}

// Write writes a single row to the CSV.
func (cw *CSVWriter) Write(r SeriesRow) error {
	if cw.config.IncludeHeader && !cw.headerDone {
		if err := cw.WriteHeader(); err != nil {
			return err
		}
	}
	if err := cw.writeBOM(); err != nil {
		return err
	}

	var row []string
	if cw.config.IncludeIndex {
		row = append(row, strconv.Itoa(r.Index))
	}
	row = append(row, cw.formatFloat(r.X), cw.formatFloat(r.Y))

	if err := cw.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	cw.rowsWritten++
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CSVWriter) Flush() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// RowsWritten returns the number of data rows written (excluding header).
func (cw *CSVWriter) RowsWritten() int {
	return cw.rowsWritten
}

func (cw *CSVWriter) writeBOM() error {
	if cw.bomDone || cw.config.Dialect != DialectExcel {
		cw.bomDone = true
		return nil
	}
	cw.bomDone = true
	if _, err := io.WriteString(cw.out, "\ufeff"); err != nil {
		return fmt.Errorf("failed to write byte order mark: %w", err)
	}
	return nil
}

func (cw *CSVWriter) formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return cw.config.NAString
	}
	if cw.config.Precision < 0 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', cw.config.Precision, 64)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

// ExportRange writes rows start..end (inclusive) of the paired x/y series.
// The range is clamped to the shorter series; an empty or inverted range
// writes only the header.
func ExportRange(w io.Writer, x, y []float64, start, end int, config *CSVConfig) (int, error) {
	writer := NewCSVWriter(w, config)
	if writer.config.IncludeHeader {
		if err := writer.WriteHeader(); err != nil {
			return 0, err
		}
	}

	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if start < 0 {
		start = 0
	}
	if end > n-1 {
		end = n - 1
	}
	for i := start; i <= end; i++ {
		if err := writer.Write(SeriesRow{Index: i, X: x[i], Y: y[i]}); err != nil {
			return writer.RowsWritten(), err
		}
	}
	return writer.RowsWritten(), writer.Flush()
}
