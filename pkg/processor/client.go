// Package processor is the HTTP client for the remote processing service.
package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/r3d91ll/spectra/pkg/archive"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
)

// Config holds processor client settings.
type Config struct {
	URL     string
	Timeout time.Duration

	// MaxResponseBytes bounds the reply body and each unpacked result file.
	// Zero means no limit.
	MaxResponseBytes int64
}

// Bounds are the optional target range parameters forwarded with an upload.
type Bounds struct {
	Min      *float64 `json:"targetMin,omitempty"`
	Max      *float64 `json:"targetMax,omitempty"`
	Interval *float64 `json:"targetInterval,omitempty"`
}

// Merge returns b with unset fields taken from defaults.
func (b Bounds) Merge(defaults Bounds) Bounds {
	if b.Min == nil {
		b.Min = defaults.Min
	}
	if b.Max == nil {
		b.Max = defaults.Max
	}
	if b.Interval == nil {
		b.Interval = defaults.Interval
	}
	return b
}

func (b Bounds) fields() [][2]string {
	var out [][2]string
	add := func(name string, v *float64) {
		if v != nil {
			out = append(out, [2]string{name, strconv.FormatFloat(*v, 'g', -1, 64)})
		}
	}
	add("target_min", b.Min)
	add("target_max", b.Max)
	add("target_interval", b.Interval)
	return out
}

// Client posts measurement files to the processing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxBytes   int64
}

// New creates a processor client.
func New(cfg Config) *Client {
	url := strings.TrimRight(cfg.URL, "/")
	if url == "" {
		url = "http://127.0.0.1:5000"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    url,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   cfg.MaxResponseBytes,
	}
}

// URL returns the service base URL.
func (c *Client) URL() string { return c.baseURL }

// Health reports whether the service answers GET /health with 200.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return serrors.InternalWrap(err, serrors.ErrInternalError, "failed to build health request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err, c.baseURL)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return serrors.Processor(serrors.ErrProcessorUnavailable, "processor health check failed").
			WithContext("url", c.baseURL).
			WithContext("status", strconv.Itoa(resp.StatusCode))
	}
	return nil
}

// Process uploads files as multipart field "files" and returns the result
// files. A ZIP response is unpacked; a single CSV response becomes one file.
func (c *Client) Process(ctx context.Context, files []archive.File, bounds Bounds) ([]archive.File, error) {
	if len(files) == 0 {
		return nil, serrors.Upload(serrors.ErrUploadNoFiles, "no files to process")
	}

	body, contentType, err := encodeForm(files, bounds)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return nil, serrors.InternalWrap(err, serrors.ErrInternalError, "failed to build upload request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err, c.baseURL)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	respBody, err := io.ReadAll(reader)
	if err != nil {
		return nil, transportError(ctx, err, c.baseURL)
	}
	if c.maxBytes > 0 && int64(len(respBody)) > c.maxBytes {
		return nil, serrors.Processor(serrors.ErrProcessorFailed, "processor response exceeds size limit").
			WithContext("url", c.baseURL).
			WithContext("limit", strconv.FormatInt(c.maxBytes, 10))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, serrors.Processor(serrors.ErrProcessorFailed, failureMessage(resp.StatusCode, respBody)).
			WithContext("url", c.baseURL).
			WithContext("status", strconv.Itoa(resp.StatusCode))
	}

	if isCSV(resp.Header.Get("Content-Type")) {
		return []archive.File{{Name: responseName(resp, "result.csv"), Data: respBody}}, nil
	}
	return archive.UnpackLimit(respBody, c.maxBytes)
}

func encodeForm(files []archive.File, bounds Bounds) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", serrors.InternalWrap(err, serrors.ErrInternalError, "failed to encode upload")
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", serrors.InternalWrap(err, serrors.ErrInternalError, "failed to encode upload")
		}
	}
	for _, kv := range bounds.fields() {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", serrors.InternalWrap(err, serrors.ErrInternalError, "failed to encode upload")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", serrors.InternalWrap(err, serrors.ErrInternalError, "failed to encode upload")
	}
	return &buf, mw.FormDataContentType(), nil
}

func transportError(ctx context.Context, err error, url string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return serrors.ProcessorWrap(err, serrors.ErrProcessorTimeout, "processor did not answer in time").
			WithContext("url", url)
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return serrors.ProcessorWrap(err, serrors.ErrProcessorTimeout, "processor did not answer in time").
			WithContext("url", url)
	}
	return serrors.ProcessorWrap(err, serrors.ErrProcessorUnavailable, "processor is unreachable").
		WithContext("url", url)
}

const maxFailureBytes = 200

// failureMessage prefers the service's {"error": "..."} body.
func failureMessage(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return "processor rejected the upload: " + payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxFailureBytes {
		cut := maxFailureBytes
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	if msg == "" {
		return fmt.Sprintf("processor returned status %d", status)
	}
	return fmt.Sprintf("processor returned status %d: %s", status, msg)
}

func isCSV(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mt == "text/csv" || mt == "application/csv")
}

func responseName(resp *http.Response, fallback string) string {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return fallback
}
