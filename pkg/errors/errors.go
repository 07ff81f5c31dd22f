// Package errors provides structured error types for Spectra.
// Errors include context, causes, and actionable suggestions.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category classifies errors for consistent handling and display.
type Category string

const (
	CategoryConfig     Category = "config"     // Configuration loading/parsing errors
	CategoryValidation Category = "validation" // Input validation errors
	CategoryUpload     Category = "upload"     // Rejected or malformed uploads
	CategoryProcessor  Category = "processor"  // Processing service communication errors
	CategoryArchive    Category = "archive"    // ZIP unpacking and bundling errors
	CategoryParse      Category = "parse"      // Tabular parsing errors
	CategoryResult     Category = "result"     // Result store errors
	CategoryChart      Category = "chart"      // Chart option and rendering errors
	CategoryIO         Category = "io"         // File/IO errors
	CategoryInternal   Category = "internal"   // Internal/unexpected errors
)

// SpectraError is a structured error with context and suggestions.
// It implements the error interface and supports error wrapping.
type SpectraError struct {
	// Code is a unique identifier for this error type (e.g., "RESULT_NOT_FOUND")
	Code string

	// Category classifies this error for consistent handling
	Category Category

	// Message is the primary error message describing what went wrong
	Message string

	// Context provides additional key-value details about the error
	Context map[string]string

	// Cause is the underlying error that triggered this error (for wrapping)
	Cause error

	// Suggestions are actionable remediation steps for the user
	Suggestions []string
}

// Error implements the error interface.
func (e *SpectraError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *SpectraError) Unwrap() error {
	return e.Cause
}

// Is reports whether e matches target for errors.Is() checks.
// Two SpectraErrors match if they have the same Code.
func (e *SpectraError) Is(target error) bool {
	if t, ok := target.(*SpectraError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new SpectraError with the given code, category, and message.
func New(code string, category Category, message string) *SpectraError {
	return &SpectraError{
		Code:     code,
		Category: category,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *SpectraError) WithContext(key, value string) *SpectraError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithContextMap adds multiple context key-value pairs.
func (e *SpectraError) WithContextMap(ctx map[string]string) *SpectraError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	for k, v := range ctx {
		e.Context[k] = v
	}
	return e
}

// WithCause wraps an underlying error and returns the error for chaining.
func (e *SpectraError) WithCause(cause error) *SpectraError {
	e.Cause = cause
	return e
}

// WithSuggestion adds a remediation suggestion and returns the error for chaining.
func (e *SpectraError) WithSuggestion(suggestion string) *SpectraError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// HasContext returns true if the error has context information.
func (e *SpectraError) HasContext() bool {
	return len(e.Context) > 0
}

// HasSuggestions returns true if the error has suggestions.
func (e *SpectraError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// ContextString returns the context entries as sorted key="value" pairs.
func (e *SpectraError) ContextString() string {
	if len(e.Context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%q", k, e.Context[k])
	}
	return strings.Join(parts, ", ")
}

// Wrap wraps an existing error with a SpectraError.
func Wrap(err error, code string, category Category, message string) *SpectraError {
	return New(code, category, message).WithCause(err)
}

// AsSpectraError finds the first SpectraError in err's chain.
func AsSpectraError(err error) (*SpectraError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SpectraError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCategory checks if an error is a SpectraError with the given category.
func IsCategory(err error, category Category) bool {
	if se, ok := AsSpectraError(err); ok {
		return se.Category == category
	}
	return false
}

// IsCode checks if an error is a SpectraError with the given code.
func IsCode(err error, code string) bool {
	if se, ok := AsSpectraError(err); ok {
		return se.Code == code
	}
	return false
}
