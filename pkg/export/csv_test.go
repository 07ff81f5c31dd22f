// Package export tests for CSV export functionality.
package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultCSVConfig(t *testing.T) {
	config := DefaultCSVConfig()

	if config.Dialect != DialectStandard {
		t.Errorf("expected Dialect %q, got %q", DialectStandard, config.Dialect)
	}
	if !config.IncludeHeader || !config.IncludeIndex {
		t.Error("expected header and index columns by default")
	}
	if config.Precision != -1 {
		t.Errorf("expected Precision -1, got %d", config.Precision)
	}
	if config.NAString != "NA" {
		t.Errorf("expected NAString %q, got %q", "NA", config.NAString)
	}
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    CSVDialect
		wantErr bool
	}{
		{"", DialectStandard, false},
		{"standard", DialectStandard, false},
		{"excel", DialectExcel, false},
		{"tsv", DialectTSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, %v", tt.input, got, err)
			}
		})
	}
	if DialectTSV.Extension() != ".tsv" || DialectExcel.Extension() != ".csv" {
		t.Error("unexpected extensions")
	}
	if !strings.HasPrefix(DialectStandard.ContentType(), "text/csv") {
		t.Error("unexpected content type")
	}
}

func TestExportRange(t *testing.T) {
	x := []float64{900, 901, 902, 903, 904}
	y := []float64{0.1, 0.25, math.NaN(), 0.5, 0.6}
	config := DefaultCSVConfig()
	config.XName = "wavelength"
	config.YName = "absorbance"

	var buf bytes.Buffer
	n, err := ExportRange(&buf, x, y, 1, 3, config)
	if err != nil {
		t.Fatalf("ExportRange failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"index", "wavelength", "absorbance"},
		{"1", "901", "0.25"},
		{"2", "902", "NA"},
		{"3", "903", "0.5"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestExportRange_Clamped(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		rows       int
	}{
		{"past end", 2, 10, 1},
		{"negative start", -5, 0, 1},
		{"inverted", 2, 1, 0},
		{"whole", 0, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := ExportRange(&buf, []float64{1, 2, 3}, []float64{4, 5, 6, 7}, tt.start, tt.end, nil)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, n)
			}
			if !strings.HasPrefix(buf.String(), "index,x,y\n") {
				t.Errorf("expected header, got %q", buf.String())
			}
		})
	}
}

func TestCSVWriter_Dialects(t *testing.T) {
	t.Run("tsv", func(t *testing.T) {
		var buf bytes.Buffer
		config := DefaultCSVConfig()
		config.Dialect = DialectTSV
		config.IncludeIndex = false
		if _, err := ExportRange(&buf, []float64{1}, []float64{2}, 0, 0, config); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "x\ty\n1\t2\n" {
			t.Errorf("unexpected tsv %q", got)
		}
	})

	t.Run("excel", func(t *testing.T) {
		var buf bytes.Buffer
		config := DefaultCSVConfig()
		config.Dialect = DialectExcel
		config.Precision = 2
		if _, err := ExportRange(&buf, []float64{1}, []float64{2.3456}, 0, 0, config); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "\ufeffindex,x,y\r\n0,1.00,2.35\r\n" {
			t.Errorf("unexpected excel csv %q", got)
		}
	})

	t.Run("no header", func(t *testing.T) {
		var buf bytes.Buffer
		config := DefaultCSVConfig()
		config.IncludeHeader = false
		config.Dialect = DialectExcel
		cw := NewCSVWriter(&buf, config)
		if err := cw.Write(SeriesRow{Index: 4, X: 1, Y: math.Inf(1)}); err != nil {
			t.Fatal(err)
		}
		if err := cw.Flush(); err != nil {
			t.Fatal(err)
		}
		if got := buf.String(); got != "\ufeff4,1,NA\r\n" {
			t.Errorf("unexpected output %q", got)
		}
		if cw.RowsWritten() != 1 {
			t.Errorf("expected 1 row, got %d", cw.RowsWritten())
		}
	})
}
