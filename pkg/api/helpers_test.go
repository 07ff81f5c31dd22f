package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/r3d91ll/spectra/pkg/archive"
	"github.com/r3d91ll/spectra/pkg/config"
	"github.com/r3d91ll/spectra/pkg/processor"
	"github.com/r3d91ll/spectra/pkg/results"
	"github.com/r3d91ll/spectra/pkg/table"
)

const sampleCSV = "t,v\n0,1\n1,3\n2,2\n3,5\n"

// fakeProcessor echoes its input files back with an "out_" prefix.
type fakeProcessor struct {
	mu        sync.Mutex
	err       error
	healthErr error
	calls     int
	received  []archive.File
	bounds    processor.Bounds
}

func (p *fakeProcessor) Process(_ context.Context, files []archive.File, bounds processor.Bounds) ([]archive.File, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.received = append([]archive.File(nil), files...)
	p.bounds = bounds
	if p.err != nil {
		return nil, p.err
	}
	out := make([]archive.File, len(files))
	for i, f := range files {
		out[i] = archive.File{Name: "out_" + f.Name, Data: f.Data}
	}
	return out, nil
}

func (p *fakeProcessor) Health(context.Context) error {
	return p.healthErr
}

// recordingEvents remembers every event type it is given.
type recordingEvents struct {
	mu     sync.Mutex
	events []string
}

func (e *recordingEvents) record(t string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, t)
	return nil
}

func (e *recordingEvents) ResultAdded(results.Summary) error    { return e.record(EventTypeResultAdded) }
func (e *recordingEvents) ResultsReset() error                  { return e.record(EventTypeResultsReset) }
func (e *recordingEvents) DescriptionSet(results.Summary) error { return e.record(EventTypeDescriptionSet) }
func (e *recordingEvents) Upload(t string, _ UploadEventData) error {
	return e.record(t)
}

func (e *recordingEvents) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

type testEnv struct {
	server    *Server
	handler   http.Handler
	registry  *results.Registry
	processor *fakeProcessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Server.EnableLogging = false
	registry := results.NewRegistry()
	proc := &fakeProcessor{}
	logger := zerolog.Nop()

	s := NewServer(cfg.Server, Deps{
		Registry:  registry,
		Processor: proc,
		Upload:    cfg.Upload,
		Chart:     cfg.Chart,
		Bounds:    cfg.Processor,
		Logger:    &logger,
	})
	t.Cleanup(s.Hub().Stop)
	return &testEnv{server: s, handler: s.Handler(), registry: registry, processor: proc}
}

// addResult stores a parsed sample result directly in the registry.
func (e *testEnv) addResult(t *testing.T, name, data string) *results.Result {
	t.Helper()
	tbl, err := table.ParseCSV(name, strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	return e.registry.Add(name, tbl, []byte(data))
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type uploadPart struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, parts []uploadPart, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		fw, err := mw.CreateFormFile("files", p.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(p.data)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// testResponse mirrors APIResponse with the payload left undecoded.
type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) testResponse {
	t.Helper()
	var resp testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return resp
}
