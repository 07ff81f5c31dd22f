package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/r3d91ll/spectra/pkg/archive"
	"github.com/r3d91ll/spectra/pkg/config"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/processor"
	"github.com/r3d91ll/spectra/pkg/results"
	"github.com/r3d91ll/spectra/pkg/table"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// UploadHandler accepts measurement files, forwards them to the processor
// and stores the parsed results.
type UploadHandler struct {
	registry  *results.Registry
	processor Processor
	upload    config.UploadConfig
	bounds    processor.Bounds
	events    EventBroadcaster
	metrics   *Metrics
	logger    zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(deps Deps, events EventBroadcaster) *UploadHandler {
	logger := defaultLogger()
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics()
	}
	return &UploadHandler{
		registry:  deps.Registry,
		processor: deps.Processor,
		upload:    deps.Upload,
		bounds: processor.Bounds{
			Min:      deps.Bounds.TargetMin,
			Max:      deps.Bounds.TargetMax,
			Interval: deps.Bounds.TargetInterval,
		},
		events:  eventsOrNop(events),
		metrics: deps.Metrics,
		logger:  logger.With().Str("component", "upload").Logger(),
	}
}

// RegisterRoutes registers the upload route on the router.
func (h *UploadHandler) RegisterRoutes(router *Router) {
	router.POST("/api/upload", h.Upload)
}

// RejectedFile is an uploaded file that was not sent to the processor.
type RejectedFile struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// UploadResponse is the response body for POST /api/upload.
type UploadResponse struct {
	Results  []results.Summary `json:"results"`
	Rejected []RejectedFile    `json:"rejected"`
}

// Upload handles POST /api/upload.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.upload.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.upload.MaxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.fail(w, uploadFormError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.fail(w, serrors.Upload(serrors.ErrUploadNoFiles, "No file part"))
		return
	}

	bounds, err := parseBounds(r.MultipartForm.Value)
	if err != nil {
		h.fail(w, err)
		return
	}

	files, rejected := h.collect(headers)
	h.metrics.RejectedFiles.Add(float64(len(rejected)))
	if len(files) == 0 {
		h.fail(w, serrors.Upload(serrors.ErrUploadNoFiles, "no supported files in upload").
			WithContext("rejected", rejectedNames(rejected)))
		return
	}
	if h.processor == nil {
		h.fail(w, serrors.Processor(serrors.ErrProcessorUnavailable, "no processor configured"))
		return
	}

	_ = h.events.Upload(EventTypeUploadStarted, UploadEventData{Files: len(files), Rejected: len(rejected)})

	out, err := h.processor.Process(r.Context(), files, bounds.Merge(h.bounds))
	if err != nil {
		if se, ok := serrors.AsSpectraError(err); ok {
			h.metrics.ProcessorFailures.WithLabelValues(se.Code).Inc()
		}
		h.fail(w, err)
		return
	}

	tables := make([]*table.Table, 0, len(out))
	for _, f := range out {
		tbl, err := table.ParseCSV(f.Name, bytes.NewReader(f.Data))
		if err != nil {
			h.fail(w, err)
			return
		}
		tables = append(tables, tbl)
	}

	h.registry.Reset()
	_ = h.events.ResultsReset()

	resp := UploadResponse{
		Results:  make([]results.Summary, 0, len(out)),
		Rejected: rejected,
	}
	for i, f := range out {
		res := h.registry.Add(f.Name, tables[i], f.Data)
		summary := res.Summary()
		resp.Results = append(resp.Results, summary)
		_ = h.events.ResultAdded(summary)
	}

	h.metrics.Uploads.WithLabelValues("ok").Inc()
	_ = h.events.Upload(EventTypeUploadFinished, UploadEventData{
		Files:    len(files),
		Results:  len(resp.Results),
		Rejected: len(rejected),
	})
	h.logger.Info().
		Int("files", len(files)).
		Int("rejected", len(rejected)).
		Int("results", len(resp.Results)).
		Msg("upload processed")

	WriteJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) fail(w http.ResponseWriter, err error) {
	h.metrics.Uploads.WithLabelValues("error").Inc()
	data := UploadEventData{Message: err.Error()}
	if se, ok := serrors.AsSpectraError(err); ok {
		data.Code = se.Code
		data.Message = se.Message
	}
	_ = h.events.Upload(EventTypeUploadFailed, data)
	h.logger.Warn().Err(err).Msg("upload failed")
	WriteErr(w, err)
}

// collect reads the uploaded files into CSV files for the processor. ZIP
// uploads contribute their CSV entries and workbooks are converted to CSV.
// Anything else is rejected without failing the request.
func (h *UploadHandler) collect(headers []*multipart.FileHeader) ([]archive.File, []RejectedFile) {
	files := make([]archive.File, 0, len(headers))
	rejected := []RejectedFile{}

	reject := func(name string, err error) {
		rf := RejectedFile{Name: name, Code: serrors.ErrInternalError, Message: err.Error()}
		if se, ok := serrors.AsSpectraError(err); ok {
			rf.Code, rf.Message = se.Code, se.Message
		}
		rejected = append(rejected, rf)
	}

	for _, fh := range headers {
		name := filepath.Base(fh.Filename)
		if !h.upload.Allowed(name) {
			reject(name, serrors.UnsupportedType(name))
			continue
		}

		data, err := readPart(fh)
		if err != nil {
			reject(name, err)
			continue
		}

		switch strings.ToLower(filepath.Ext(name)) {
		case ".zip":
			entries, err := archive.UnpackLimit(data, h.upload.MaxBytes)
			if err != nil {
				reject(name, err)
				continue
			}
			files = append(files, entries...)
		case ".xlsx":
			tbl, err := table.ParseXLSX(name, bytes.NewReader(data))
			if err != nil {
				reject(name, err)
				continue
			}
			csv, err := tbl.CSV()
			if err != nil {
				reject(name, err)
				continue
			}
			files = append(files, archive.File{Name: table.CSVName(name), Data: csv})
		default:
			files = append(files, archive.File{Name: name, Data: data})
		}
	}
	return files, rejected
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, serrors.IOWrap(err, serrors.ErrIOReadFailed, "failed to open uploaded file").
			WithContext("file", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, serrors.IOWrap(err, serrors.ErrIOReadFailed, "failed to read uploaded file").
			WithContext("file", fh.Filename)
	}
	return data, nil
}

func uploadFormError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return serrors.Upload(serrors.ErrUploadTooLarge, "upload exceeds the size limit").
			WithContext("limit", strconv.FormatInt(tooLarge.Limit, 10)).
			WithCause(err)
	}
	// Some multipart errors flatten the cause into the message.
	if strings.Contains(err.Error(), "request body too large") {
		return serrors.Upload(serrors.ErrUploadTooLarge, "upload exceeds the size limit").WithCause(err)
	}
	return serrors.Upload(serrors.ErrUploadMalformed, "request is not a multipart upload").WithCause(err)
}

// parseBounds reads target_min, target_max and target_interval form values.
func parseBounds(values map[string][]string) (processor.Bounds, error) {
	var b processor.Bounds
	for _, field := range []struct {
		name string
		dst  **float64
	}{
		{"target_min", &b.Min},
		{"target_max", &b.Max},
		{"target_interval", &b.Interval},
	} {
		vs := values[field.name]
		if len(vs) == 0 || strings.TrimSpace(vs[0]) == "" {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(vs[0]), 64)
		if err != nil {
			return b, serrors.Validationf(serrors.ErrValidationInvalidValue, "%s must be a number", field.name).
				WithContext("field", field.name).
				WithCause(err)
		}
		*field.dst = &v
	}
	if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return b, serrors.Validation(serrors.ErrValidationInvalidValue, "target_min must not exceed target_max").
			WithContext("field", "target_min")
	}
	if b.Interval != nil && *b.Interval <= 0 {
		return b, serrors.Validation(serrors.ErrValidationInvalidValue, "target_interval must be positive").
			WithContext("field", "target_interval")
	}
	return b, nil
}

func rejectedNames(rejected []RejectedFile) string {
	names := make([]string, len(rejected))
	for i, rf := range rejected {
		names[i] = rf.Name
	}
	return strings.Join(names, ", ")
}
