package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

func makeZip(t *testing.T, entries ...File) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUnpack_KeepsCSVInOrder(t *testing.T) {
	data := makeZip(t,
		File{Name: "b.csv", Data: []byte("x\n1\n")},
		File{Name: "readme.txt", Data: []byte("skip")},
		File{Name: "nested/", Data: nil},
		File{Name: "nested/a.CSV", Data: []byte("y\n2\n")},
	)

	files, err := Unpack(data)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	want := []File{
		{Name: "b.csv", Data: []byte("x\n1\n")},
		{Name: "nested/a.CSV", Data: []byte("y\n2\n")},
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("unexpected files (-want +got):\n%s", diff)
	}
}

func TestUnpack_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code string
	}{
		{"not a zip", []byte("plain text"), serrors.ErrArchiveInvalid},
		{"no csv", makeZip(t, File{Name: "a.txt", Data: []byte("x")}), serrors.ErrArchiveEmpty},
		{"empty archive", makeZip(t), serrors.ErrArchiveEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpack(tt.data)
			if !serrors.IsCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestUnpackLimit(t *testing.T) {
	data := makeZip(t, File{Name: "big.csv", Data: bytes.Repeat([]byte("1\n"), 100)})

	if _, err := UnpackLimit(data, 200); err != nil {
		t.Errorf("entry at the limit should pass: %v", err)
	}
	_, err := UnpackLimit(data, 199)
	if !serrors.IsCode(err, serrors.ErrUploadTooLarge) {
		t.Errorf("expected UPLOAD_TOO_LARGE, got %v", err)
	}
}

func TestBundle(t *testing.T) {
	files := []File{
		{Name: "a.csv", Data: []byte("1")},
		{Name: "a.csv", Data: []byte("2")},
		{Name: "b.csv", Data: []byte("3")},
	}
	var buf bytes.Buffer
	if err := Bundle(&buf, files); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	got, err := Unpack(buf.Bytes())
	if err != nil {
		t.Fatalf("bundle should unpack: %v", err)
	}
	want := []File{
		{Name: "a.csv", Data: []byte("1")},
		{Name: "a (1).csv", Data: []byte("2")},
		{Name: "b.csv", Data: []byte("3")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected bundle (-want +got):\n%s", diff)
	}
}

func TestBundle_SuffixCollision(t *testing.T) {
	files := []File{
		{Name: "a.csv", Data: []byte("1")},
		{Name: "a.csv", Data: []byte("2")},
		{Name: "a (1).csv", Data: []byte("3")},
	}
	var buf bytes.Buffer
	if err := Bundle(&buf, files); err != nil {
		t.Fatalf("Bundle failed: %v", err)
	}

	got, err := Unpack(buf.Bytes())
	if err != nil {
		t.Fatalf("bundle should unpack: %v", err)
	}
	want := []File{
		{Name: "a.csv", Data: []byte("1")},
		{Name: "a (1).csv", Data: []byte("2")},
		{Name: "a (1) (1).csv", Data: []byte("3")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected bundle (-want +got):\n%s", diff)
	}
}

func TestIsCSV(t *testing.T) {
	for name, want := range map[string]bool{"a.csv": true, "A.CSV": true, "a.csv.txt": false, "csv": false} {
		if IsCSV(name) != want {
			t.Errorf("IsCSV(%q) != %v", name, want)
		}
	}
}
