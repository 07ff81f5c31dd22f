package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/r3d91ll/spectra/pkg/archive"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/export"
	"github.com/r3d91ll/spectra/pkg/results"
)

// BundleName is the file name of a multi-result download.
const BundleName = "results.zip"

// DownloadHandler serves result files and selection exports.
type DownloadHandler struct {
	registry *results.Registry
}

// NewDownloadHandler creates a new DownloadHandler.
func NewDownloadHandler(registry *results.Registry) *DownloadHandler {
	return &DownloadHandler{registry: registry}
}

// RegisterRoutes registers the download routes on the router.
func (h *DownloadHandler) RegisterRoutes(router *Router) {
	router.GET("/api/results/:id/download", h.DownloadResult)
	router.POST("/api/results/download", h.DownloadResults)
	router.GET("/api/results/:id/selection.csv", h.DownloadSelection)
}

// DownloadRequest is the request body for POST /api/results/download.
type DownloadRequest struct {
	IDs []string `json:"ids"`
}

// DownloadResult handles GET /api/results/:id/download and answers with the
// processed CSV as returned by the processor.
func (h *DownloadHandler) DownloadResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.registry.Get(PathParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return
	}
	writeFile(w, r, res)
}

// DownloadResults handles POST /api/results/download. One id answers with
// that file; several are bundled into results.zip.
func (h *DownloadHandler) DownloadResults(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	if err := ReadJSON(r, &req); err != nil {
		WriteErr(w, err)
		return
	}
	if len(req.IDs) == 0 {
		WriteErr(w, serrors.Validation(serrors.ErrValidationRequired, "ids is required").
			WithContext("field", "ids"))
		return
	}

	found, err := h.registry.GetAll(req.IDs)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if len(found) == 1 {
		writeFile(w, r, found[0])
		return
	}

	files := make([]archive.File, len(found))
	for i, res := range found {
		files[i] = archive.File{Name: res.Name, Data: res.Raw}
	}
	var buf bytes.Buffer
	if err := archive.Bundle(&buf, files); err != nil {
		WriteErr(w, err)
		return
	}
	WriteAttachment(w, BundleName, "application/zip", buf.Bytes())
}

// DownloadSelection handles GET /api/results/:id/selection.csv. start and
// end are inclusive row indices; column and x pick the series as for the
// chart endpoints and dialect selects standard, excel or tsv output.
func (h *DownloadHandler) DownloadSelection(w http.ResponseWriter, r *http.Request) {
	res, err := h.registry.Get(PathParam(r, "id"))
	if err != nil {
		WriteErr(w, err)
		return
	}

	q := r.URL.Query()
	start, err := intParam(q.Get("start"), "start")
	if err != nil {
		WriteErr(w, err)
		return
	}
	end, err := intParam(q.Get("end"), "end")
	if err != nil {
		WriteErr(w, err)
		return
	}
	if start > end {
		start, end = end, start
	}

	dialect, err := export.ParseDialect(q.Get("dialect"))
	if err != nil {
		WriteErr(w, serrors.Validation(serrors.ErrValidationInvalidValue, err.Error()).
			WithContext("field", "dialect"))
		return
	}

	params := ChartParams{Column: q.Get("column"), X: q.Get("x")}
	series, column, err := params.Series(res.Ref, res.Table)
	if err != nil {
		WriteErr(w, err)
		return
	}

	cfg := export.DefaultCSVConfig()
	cfg.Dialect = dialect
	cfg.YName = column
	if params.X != "" {
		cfg.XName = params.X
	}

	var buf bytes.Buffer
	if _, err := export.ExportRange(&buf, series.X, series.Y, start, end, cfg); err != nil {
		WriteErr(w, serrors.IOWrap(err, serrors.ErrIOWriteFailed, "failed to write selection"))
		return
	}

	base := strings.TrimSuffix(filepath.Base(res.Name), filepath.Ext(res.Name))
	name := fmt.Sprintf("%s_%d-%d%s", base, start, end, dialect.Extension())
	WriteAttachment(w, name, dialect.ContentType(), buf.Bytes())
}

// writeFile answers with the raw result, honouring If-None-Match.
func writeFile(w http.ResponseWriter, r *http.Request, res *results.Result) {
	tag := export.ETag(export.ContentHash(res.Raw))
	w.Header().Set("ETag", tag)
	if export.MatchesETag(r.Header.Get("If-None-Match"), tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	WriteAttachment(w, filepath.Base(res.Name), "text/csv; charset=utf-8", res.Raw)
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, serrors.Validationf(serrors.ErrValidationRequired, "%s is required", name).
			WithContext("field", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, serrors.Validationf(serrors.ErrValidationInvalidValue, "%s must be an integer", name).
			WithContext("field", name).
			WithCause(err)
	}
	return v, nil
}
