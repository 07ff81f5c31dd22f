// Package archive unpacks processor results and bundles downloads.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// File is a named in-memory file.
type File struct {
	Name string
	Data []byte
}

// IsCSV reports whether a file name ends in .csv, ignoring case.
func IsCSV(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

// Unpack returns the .csv entries of a ZIP archive in archive order.
func Unpack(data []byte) ([]File, error) {
	return UnpackLimit(data, 0)
}

// UnpackLimit is Unpack with a cap on the decompressed size of each entry.
// A limit <= 0 disables the cap.
func UnpackLimit(data []byte, limit int64) ([]File, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, serrors.ArchiveWrap(err, serrors.ErrArchiveInvalid, "not a valid zip archive")
	}

	var files []File
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !IsCSV(entry.Name) {
			continue
		}
		content, err := readEntry(entry, limit)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Name: entry.Name, Data: content})
	}

	if len(files) == 0 {
		return nil, serrors.Archive(serrors.ErrArchiveEmpty, "archive contains no .csv files").
			WithContext("entries", fmt.Sprint(len(zr.File)))
	}
	return files, nil
}

func readEntry(entry *zip.File, limit int64) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, serrors.ArchiveWrap(err, serrors.ErrArchiveInvalid, "failed to open archive entry").
			WithContext("entry", entry.Name)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, serrors.ArchiveWrap(err, serrors.ErrArchiveInvalid, "failed to read archive entry").
			WithContext("entry", entry.Name)
	}
	if limit > 0 && int64(len(content)) > limit {
		return nil, serrors.Upload(serrors.ErrUploadTooLarge, "archive entry exceeds size limit").
			WithContext("entry", entry.Name).
			WithContext("limit", fmt.Sprint(limit))
	}
	return content, nil
}

// Bundle writes files into a ZIP archive on w, in the given order.
// Duplicate names are suffixed so every entry stays reachable.
func Bundle(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	used := make(map[string]bool, len(files))
	for _, f := range files {
		name := uniqueName(f.Name, used)
		fw, err := zw.Create(name)
		if err != nil {
			zw.Close()
			return serrors.ArchiveWrap(err, serrors.ErrArchiveWriteFailed, "failed to add archive entry").
				WithContext("entry", name)
		}
		if _, err := fw.Write(f.Data); err != nil {
			zw.Close()
			return serrors.ArchiveWrap(err, serrors.ErrArchiveWriteFailed, "failed to write archive entry").
				WithContext("entry", name)
		}
	}
	if err := zw.Close(); err != nil {
		return serrors.ArchiveWrap(err, serrors.ErrArchiveWriteFailed, "failed to finish archive")
	}
	return nil
}

// uniqueName returns name, or name with the first free " (n)" suffix before
// the extension, and marks the result as used.
func uniqueName(name string, used map[string]bool) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	candidate := name
	for n := 1; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", base, n, ext)
	}
	used[candidate] = true
	return candidate
}
