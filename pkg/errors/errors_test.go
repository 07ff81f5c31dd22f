// Package errors tests for structured error types.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	se := New("TEST_ERROR", CategoryConfig, "test message")

	if se.Code != "TEST_ERROR" {
		t.Errorf("expected Code 'TEST_ERROR', got %q", se.Code)
	}
	if se.Category != CategoryConfig {
		t.Errorf("expected Category config, got %v", se.Category)
	}
	if se.Context == nil {
		t.Error("expected Context map to be initialized")
	}
	if se.Cause != nil || se.Suggestions != nil {
		t.Error("expected no cause and no suggestions")
	}
}

func TestSpectraError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *SpectraError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrResultNotFound, CategoryResult, "result not found"),
			expected: "RESULT_NOT_FOUND: result not found",
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("connection refused"), ErrProcessorUnavailable, CategoryProcessor, "processor unreachable"),
			expected: "PROCESSOR_UNAVAILABLE: processor unreachable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSpectraError_Chain(t *testing.T) {
	cause := fmt.Errorf("eof")
	se := ParseWrap(cause, ErrParseFailed, "bad csv")
	wrapped := fmt.Errorf("upload: %w", se)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the cause")
	}
	if !errors.Is(wrapped, New(ErrParseFailed, CategoryInternal, "")) {
		t.Error("errors.Is should match by code")
	}
	if errors.Is(wrapped, New(ErrParseNoHeader, CategoryParse, "")) {
		t.Error("different codes must not match")
	}

	got, ok := AsSpectraError(wrapped)
	if !ok || got != se {
		t.Fatal("AsSpectraError should unwrap the chain")
	}
	if !IsCategory(wrapped, CategoryParse) || !IsCode(wrapped, ErrParseFailed) {
		t.Error("category and code helpers should see through wrapping")
	}
	if _, ok := AsSpectraError(nil); ok {
		t.Error("nil is not a SpectraError")
	}
}

func TestSpectraError_Context(t *testing.T) {
	se := New("X", CategoryIO, "m").
		WithContext("b", "2").
		WithContextMap(map[string]string{"a": "1"})

	if !se.HasContext() {
		t.Fatal("expected context")
	}
	if got := se.ContextString(); got != `a="1", b="2"` {
		t.Errorf("unexpected context string %q", got)
	}
	if (&SpectraError{}).WithContext("k", "v").Context["k"] != "v" {
		t.Error("WithContext should initialise a nil map")
	}
}

func TestCodeCategory(t *testing.T) {
	tests := map[string]Category{
		ErrConfigNotFound:        CategoryConfig,
		ErrValidationInvalidJSON: CategoryValidation,
		ErrUploadUnsupportedType: CategoryUpload,
		ErrProcessorFailed:       CategoryProcessor,
		ErrArchiveEmpty:          CategoryArchive,
		ErrParseNoHeader:         CategoryParse,
		ErrResultNotFound:        CategoryResult,
		ErrChartInvalidOption:    CategoryChart,
		ErrIOWriteFailed:         CategoryIO,
		"SOMETHING_ELSE":         CategoryInternal,
	}
	for code, want := range tests {
		if got := CodeCategory(code); got != want {
			t.Errorf("CodeCategory(%s) = %s, want %s", code, got, want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"unsupported type", UnsupportedType("a.txt"), http.StatusUnsupportedMediaType},
		{"too large", Upload(ErrUploadTooLarge, "too big"), http.StatusRequestEntityTooLarge},
		{"no files", Upload(ErrUploadNoFiles, "none"), http.StatusBadRequest},
		{"not found", ResultNotFound("abc"), http.StatusNotFound},
		{"exists", ResultExists("abc"), http.StatusConflict},
		{"processor", Processor(ErrProcessorUnavailable, "down"), http.StatusBadGateway},
		{"processor timeout", Processor(ErrProcessorTimeout, "slow"), http.StatusGatewayTimeout},
		{"archive", Archive(ErrArchiveInvalid, "bad zip"), http.StatusUnprocessableEntity},
		{"chart option", InvalidOption("height", "x", nil), http.StatusBadRequest},
		{"render", Chart(ErrChartRenderFailed, "png"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", ColumnNotFound("y")), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSuggestions(t *testing.T) {
	se := UnsupportedType("notes.txt")
	if !se.HasSuggestions() {
		t.Fatal("expected registry suggestions")
	}
	if !strings.Contains(se.Suggestions[0], ".csv") {
		t.Errorf("unexpected first suggestion %q", se.Suggestions[0])
	}

	r := NewRegistry().
		Register("C", "low").
		RegisterWithPriority("C", "high", 5).
		RegisterWithCondition("C", "linux only", map[string]string{ContextOS: OSLinux})

	got := r.Get("C", map[string]string{ContextOS: OSDarwin})
	if len(got) != 2 || got[0] != "high" || got[1] != "low" {
		t.Errorf("unexpected suggestions %v", got)
	}
	if got := r.Get("C", map[string]string{ContextOS: OSLinux}); len(got) != 3 {
		t.Errorf("expected the conditional suggestion on linux, got %v", got)
	}
	if r.HasSuggestions("D") {
		t.Error("unexpected suggestions for unknown code")
	}
	if AttachSuggestions(nil) != nil {
		t.Error("AttachSuggestions(nil) should be nil")
	}
}

func TestFormatSuggestionList(t *testing.T) {
	if got := FormatSuggestionList(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := FormatSuggestionList([]string{"a", "b"}); got != "→ a\n→ b" {
		t.Errorf("unexpected %q", got)
	}
}
