package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/r3d91ll/spectra/pkg/archive"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/table"
)

// loadInputs reads local files the way the upload endpoint reads parts:
// ZIP archives contribute their CSV entries and workbooks become CSV.
func loadInputs(paths []string, limit int64) ([]archive.File, error) {
	var files []archive.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, serrors.IOWrap(err, serrors.ErrIOReadFailed, "failed to read input").
				WithContext("path", path)
		}
		name := filepath.Base(path)

		switch strings.ToLower(filepath.Ext(name)) {
		case ".zip":
			entries, err := archive.UnpackLimit(data, limit)
			if err != nil {
				return nil, err
			}
			files = append(files, entries...)
		case ".xlsx":
			tbl, err := table.ParseXLSX(name, bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			csv, err := tbl.CSV()
			if err != nil {
				return nil, err
			}
			files = append(files, archive.File{Name: table.CSVName(name), Data: csv})
		case ".csv":
			files = append(files, archive.File{Name: name, Data: data})
		default:
			return nil, serrors.UnsupportedType(name)
		}
	}
	return files, nil
}

// loadTable parses a single CSV or XLSX file.
func loadTable(path string) (*table.Table, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, serrors.IOWrap(err, serrors.ErrIOReadFailed, "failed to read input").
			WithContext("path", path)
	}
	name := filepath.Base(path)
	if table.IsWorkbook(name) {
		tbl, err := table.ParseXLSX(name, bytes.NewReader(data))
		return tbl, data, err
	}
	tbl, err := table.ParseCSV(name, bytes.NewReader(data))
	return tbl, data, err
}
