// Package errors provides a suggestions registry for error remediation.
// Maps error codes to context-aware suggestions that help users fix issues.
package errors

import (
	"runtime"
	"sort"
	"strings"
)

// Context keys used to select appropriate suggestions.
const (
	// ContextOS is the operating system (e.g., "linux", "darwin", "windows")
	ContextOS = "os"

	// ContextFile is the file name an error refers to.
	ContextFile = "file"
)

// OS values for platform-specific suggestions.
const (
	OSLinux   = "linux"
	OSDarwin  = "darwin"
	OSWindows = "windows"
)

// Suggestion represents a remediation suggestion with optional conditions.
type Suggestion struct {
	// Text is the suggestion message displayed to the user.
	Text string

	// Conditions are key-value pairs that must all match the error context.
	// If empty, the suggestion applies to all contexts.
	Conditions map[string]string

	// Priority determines order when multiple suggestions apply.
	// Higher priority suggestions are shown first.
	Priority int
}

// Matches returns true if this suggestion's conditions match the given context.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to their remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates a new suggestion registry.
func NewRegistry() *Registry {
	return &Registry{
		suggestions: make(map[string][]Suggestion),
	}
}

// Register adds a suggestion for an error code.
func (r *Registry) Register(code, text string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text})
}

// RegisterWithCondition adds a conditional suggestion for an error code.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Conditions: conditions})
}

// RegisterWithPriority adds a suggestion with explicit priority.
func (r *Registry) RegisterWithPriority(code, text string, priority int) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Priority: priority})
}

// RegisterSuggestion adds a complete Suggestion struct.
func (r *Registry) RegisterSuggestion(code string, suggestion Suggestion) *Registry {
	r.suggestions[code] = append(r.suggestions[code], suggestion)
	return r
}

// Get returns all suggestions for an error code that match the given context,
// highest priority first.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}
	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].Priority > matching[j].Priority
	})

	result := make([]string, len(matching))
	for i, s := range matching {
		result[i] = s.Text
	}
	return result
}

// HasSuggestions returns true if any suggestions exist for the error code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

// DefaultContext returns a context map with current platform information.
func DefaultContext() map[string]string {
	return map[string]string{ContextOS: runtime.GOOS}
}

// MergeContext combines multiple context maps into one.
// Later maps override earlier ones for duplicate keys.
func MergeContext(contexts ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, ctx := range contexts {
		for k, v := range ctx {
			result[k] = v
		}
	}
	return result
}

// defaultRegistry is the global registry with built-in suggestions.
var defaultRegistry = NewRegistry()

// GetSuggestions returns suggestions for an error code using the default registry.
func GetSuggestions(code string) []string {
	return defaultRegistry.Get(code, DefaultContext())
}

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func init() {
	defaultRegistry.
		Register(ErrConfigNotFound, "Create a default configuration with 'spectra init'").
		Register(ErrConfigNotFound, "Pass an explicit path with --config").
		Register(ErrConfigParseFailed, "Check the YAML syntax; indentation must use spaces").
		Register(ErrConfigInvalid, "Run 'spectra init --force' to regenerate a valid configuration").
		RegisterWithCondition(ErrConfigWriteFailed, "Check permissions on ~/.config/spectra", map[string]string{ContextOS: OSLinux}).
		RegisterWithCondition(ErrConfigWriteFailed, "Check permissions on ~/Library/Application Support/spectra", map[string]string{ContextOS: OSDarwin})

	defaultRegistry.
		RegisterWithPriority(ErrUploadUnsupportedType, "Upload .csv files, .zip archives of .csv files, or .xlsx workbooks", 10).
		Register(ErrUploadNoFiles, "Attach one or more files in the 'files' form field").
		Register(ErrUploadTooLarge, "Split the upload or raise upload.max_bytes in the configuration")

	defaultRegistry.
		RegisterWithPriority(ErrProcessorUnavailable, "Check that the processing service is running", 10).
		Register(ErrProcessorUnavailable, "Verify processor.url or SPECTRA_PROCESSOR_URL").
		Register(ErrProcessorTimeout, "Raise processor.timeout for large uploads").
		Register(ErrProcessorFailed, "Check the processing service logs for the failing file")

	defaultRegistry.
		Register(ErrArchiveInvalid, "Make sure the file is a standard ZIP archive").
		Register(ErrArchiveEmpty, "The archive must contain at least one .csv entry").
		Register(ErrParseNoHeader, "The first row of the file must name the columns").
		Register(ErrParseColumnNotFound, "List the available columns with GET /api/results/:id").
		Register(ErrResultNotFound, "Results are replaced on every upload; list current ones with GET /api/results").
		Register(ErrChartInvalidOption, "Heights accept 120, 120px or 50%; ranges are written start,end")
}

// AttachSuggestions adds suggestions from the registry to a SpectraError.
func AttachSuggestions(err *SpectraError) *SpectraError {
	if err == nil {
		return nil
	}
	ctx := MergeContext(DefaultContext(), err.Context)
	if suggestions := defaultRegistry.Get(err.Code, ctx); len(suggestions) > 0 {
		err.Suggestions = append(err.Suggestions, suggestions...)
	}
	return err
}

// FormatSuggestionList formats a list of suggestions for display.
func FormatSuggestionList(suggestions []string) string {
	lines := make([]string, len(suggestions))
	for i, s := range suggestions {
		lines[i] = "→ " + s
	}
	return strings.Join(lines, "\n")
}
