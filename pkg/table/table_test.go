package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

func TestNewCell(t *testing.T) {
	tests := []struct {
		input string
		want  Cell
	}{
		{"123", Cell{Text: "123", Num: 123, IsNum: true}},
		{" 1.5e3 ", Cell{Text: "1.5e3", Num: 1500, IsNum: true}},
		{"-0.25", Cell{Text: "-0.25", Num: -0.25, IsNum: true}},
		{"0", Cell{Text: "0", Num: 0, IsNum: true}},
		{"NaN", Cell{Text: "NaN"}},
		{"Inf", Cell{Text: "Inf"}},
		{"sample", Cell{Text: "sample"}},
		{"", Cell{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, NewCell(tt.input)); diff != "" {
				t.Errorf("NewCell(%q) (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestParseCSV(t *testing.T) {
	data := "\ufeffwavelength,absorbance,label\n" +
		"900,0.12,a\n" +
		"901,,b\n" +
		"902,0.15\n" +
		"\n" +
		"903,0,c\n"

	tbl, err := ParseCSV("sample.csv", strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}

	if diff := cmp.Diff([]string{"wavelength", "absorbance", "label"}, tbl.Columns); diff != "" {
		t.Errorf("columns (-want +got):\n%s", diff)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected 2 complete rows, got %d", tbl.Len())
	}

	x, err := tbl.Numeric("wavelength")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{900, 903}, x); diff != "" {
		t.Errorf("rows should keep file order (-want +got):\n%s", diff)
	}
	y, _ := tbl.Numeric("absorbance")
	if diff := cmp.Diff([]float64{0.12, 0}, y); diff != "" {
		t.Errorf("numeric zero is a value (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"wavelength", "absorbance"}, tbl.NumericColumns()); diff != "" {
		t.Errorf("numeric columns (-want +got):\n%s", diff)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"empty", "", serrors.ErrParseNoHeader},
		{"blank header", ",,\n1,2,3\n", serrors.ErrParseNoHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV("f.csv", strings.NewReader(tt.data))
			if !serrors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	_, err := ParseCSV("f.csv", iotest.ErrReader(errors.New("disk gone")))
	if !serrors.IsCode(err, serrors.ErrParseFailed) {
		t.Errorf("expected PARSE_FAILED for a read error, got %v", err)
	}
}

func TestFromRecords_Headers(t *testing.T) {
	tbl, err := FromRecords("t", [][]string{
		{"x", "", "x", "x"},
		{"1", "2", "3", "4"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"x", "column_2", "x_1", "x_2"}
	if diff := cmp.Diff(want, tbl.Columns); diff != "" {
		t.Errorf("headers (-want +got):\n%s", diff)
	}
	cells, ok := tbl.Column("x_2")
	if !ok || len(cells) != 1 || cells[0].Num != 4 {
		t.Errorf("unexpected cells %v", cells)
	}
}

func TestFromRecords_GeneratedHeaderCollision(t *testing.T) {
	tbl, err := FromRecords("t", [][]string{
		{"v", "v", "v_1"},
		{"1", "2", "3"},
		{"4", "5", "6"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v", "v_1", "v_1_1"}, tbl.Columns); diff != "" {
		t.Errorf("headers (-want +got):\n%s", diff)
	}
	want := [][]string{{"v", "v_1", "v_1_1"}, {"1", "2", "3"}, {"4", "5", "6"}}
	if diff := cmp.Diff(want, tbl.Records()); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
}

func TestNumeric_Errors(t *testing.T) {
	tbl, err := ParseCSV("t.csv", strings.NewReader("x,name\n1,a\n2,b\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Numeric("missing"); !serrors.IsCode(err, serrors.ErrParseColumnNotFound) {
		t.Errorf("expected PARSE_COLUMN_NOT_FOUND, got %v", err)
	}
	_, err = tbl.Numeric("name")
	se, ok := serrors.AsSpectraError(err)
	if !ok || se.Code != serrors.ErrParseNotNumeric || se.Context["row"] != "1" {
		t.Errorf("expected PARSE_NOT_NUMERIC at row 1, got %v", err)
	}
}

func TestTable_CSV(t *testing.T) {
	tbl, err := ParseCSV("t.csv", strings.NewReader("a,b\n1,\"x,y\"\n2,z\n"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := tbl.CSV()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(out), "a,b\n1,\"x,y\"\n2,z\n"; got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "wavelength")
	f.SetCellValue(sheet, "B1", "absorbance")
	f.SetCellValue(sheet, "A2", 900)
	f.SetCellValue(sheet, "B2", 0.5)
	f.SetCellValue(sheet, "A3", 901)
	f.SetCellValue(sheet, "A4", 902)
	f.SetCellValue(sheet, "B4", 0.75)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}

	tbl, err := ParseXLSX("book.xlsx", &buf)
	if err != nil {
		t.Fatalf("ParseXLSX failed: %v", err)
	}
	x, _ := tbl.Numeric("wavelength")
	y, _ := tbl.Numeric("absorbance")
	if diff := cmp.Diff([]float64{900, 902}, x); diff != "" {
		t.Errorf("x (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5, 0.75}, y); diff != "" {
		t.Errorf("y (-want +got):\n%s", diff)
	}
}

func TestParseXLSX_Invalid(t *testing.T) {
	_, err := ParseXLSX("book.xlsx", strings.NewReader("not a workbook"))
	if !serrors.IsCode(err, serrors.ErrParseFailed) {
		t.Errorf("expected PARSE_FAILED, got %v", err)
	}
}

func TestNames(t *testing.T) {
	if !IsWorkbook("A.XLSX") || IsWorkbook("a.csv") {
		t.Error("IsWorkbook mismatch")
	}
	if got := CSVName("dir/book.xlsx"); got != "dir/book.csv" {
		t.Errorf("CSVName = %q", got)
	}
}
