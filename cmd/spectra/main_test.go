package main

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/r3d91ll/spectra/pkg/chart"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

const runCSV = "t,v\n0,1\n1,3\n2,2\n"

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadInputs(t *testing.T) {
	dir := t.TempDir()

	var zbuf bytes.Buffer
	zw := zip.NewWriter(&zbuf)
	for _, name := range []string{"a.csv", "notes.txt"} {
		w, _ := zw.Create(name)
		w.Write([]byte(runCSV))
	}
	zw.Close()

	paths := []string{
		writeFile(t, dir, "run.csv", []byte(runCSV)),
		writeFile(t, dir, "bundle.zip", zbuf.Bytes()),
	}
	files, err := loadInputs(paths, 0)
	if err != nil {
		t.Fatalf("loadInputs: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"run.csv", "a.csv"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}

	_, err = loadInputs([]string{writeFile(t, dir, "notes.txt", nil)}, 0)
	if se, ok := serrors.AsSpectraError(err); !ok || se.Code != serrors.ErrUploadUnsupportedType {
		t.Errorf("Expected unsupported type, got %v", err)
	}

	_, err = loadInputs([]string{filepath.Join(dir, "missing.csv")}, 0)
	if se, ok := serrors.AsSpectraError(err); !ok || se.Code != serrors.ErrIOReadFailed {
		t.Errorf("Expected read failure, got %v", err)
	}
}

func TestChartFlags(t *testing.T) {
	f := ChartFlags{X: "t", Width: 640, Height: "50%", Window: "0,2", Fill: true, Title: "Run"}
	p, err := f.ChartParams()
	if err != nil {
		t.Fatalf("ChartParams: %v", err)
	}
	if p.X != "t" || p.Width != 640 || p.Height != "50%" || !p.Fill || p.Title != "Run" {
		t.Errorf("unexpected params %+v", p)
	}
	if diff := cmp.Diff(chart.Range(0, 2), p.Window); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}

	if _, err := (&ChartFlags{Axes: "z"}).ChartParams(); err == nil {
		t.Error("Expected an error for unknown axes")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "run.csv", []byte(runCSV))

	t.Run("svg to stdout", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRenderCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input, "--x-column", "t", "--title", "Run"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if !strings.Contains(out.String(), "<svg") || !strings.Contains(out.String(), "Run") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("png by extension", func(t *testing.T) {
		output := filepath.Join(dir, "run.png")
		cmd := newRenderCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input, "-o", output})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Error("Expected a PNG file")
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		cmd := newRenderCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{input, "--column", "nope"})
		err := cmd.Execute()
		if se, ok := serrors.AsSpectraError(err); !ok || se.Code != serrors.ErrParseColumnNotFound {
			t.Errorf("Expected column not found, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != "Spectra "+version+"\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}
