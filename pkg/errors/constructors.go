// Package errors provides smart error constructors that auto-attach suggestions.
package errors

import "fmt"

// Config creates a configuration error with auto-attached suggestions.
func Config(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryConfig, message))
}

// ConfigWrap wraps an error as a configuration error with auto-attached suggestions.
func ConfigWrap(cause error, code, message string) *SpectraError {
	return AttachSuggestions(Wrap(cause, code, CategoryConfig, message))
}

// Validation creates a validation error.
func Validation(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryValidation, message))
}

// Validationf creates a validation error with a formatted message.
func Validationf(code, format string, args ...interface{}) *SpectraError {
	return Validation(code, fmt.Sprintf(format, args...))
}

// Upload creates an upload error with auto-attached suggestions.
func Upload(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryUpload, message))
}

// Uploadf creates an upload error with a formatted message.
func Uploadf(code, format string, args ...interface{}) *SpectraError {
	return Upload(code, fmt.Sprintf(format, args...))
}

// Processor creates a processing service error with auto-attached suggestions.
func Processor(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryProcessor, message))
}

// ProcessorWrap wraps a transport error from the processing service.
func ProcessorWrap(cause error, code, message string) *SpectraError {
	return AttachSuggestions(Wrap(cause, code, CategoryProcessor, message))
}

// Archive creates an archive error.
func Archive(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryArchive, message))
}

// ArchiveWrap wraps an error as an archive error.
func ArchiveWrap(cause error, code, message string) *SpectraError {
	return AttachSuggestions(Wrap(cause, code, CategoryArchive, message))
}

// Parse creates a parse error.
func Parse(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryParse, message))
}

// Parsef creates a parse error with a formatted message.
func Parsef(code, format string, args ...interface{}) *SpectraError {
	return Parse(code, fmt.Sprintf(format, args...))
}

// ParseWrap wraps an error as a parse error.
func ParseWrap(cause error, code, message string) *SpectraError {
	return AttachSuggestions(Wrap(cause, code, CategoryParse, message))
}

// Chart creates a chart error.
func Chart(code, message string) *SpectraError {
	return AttachSuggestions(New(code, CategoryChart, message))
}

// Chartf creates a chart error with a formatted message.
func Chartf(code, format string, args ...interface{}) *SpectraError {
	return Chart(code, fmt.Sprintf(format, args...))
}

// IOWrap wraps an error as an IO error.
func IOWrap(cause error, code, message string) *SpectraError {
	return AttachSuggestions(Wrap(cause, code, CategoryIO, message))
}

// Internal creates an internal error.
func Internal(code, message string) *SpectraError {
	return New(code, CategoryInternal, message)
}

// InternalWrap wraps an error as an internal error.
func InternalWrap(cause error, code, message string) *SpectraError {
	return Wrap(cause, code, CategoryInternal, message)
}

// -----------------------------------------------------------------------------
// Quick Constructors for Common Error Codes
// -----------------------------------------------------------------------------

// ConfigNotFound creates a CONFIG_NOT_FOUND error.
func ConfigNotFound(path string) *SpectraError {
	return Config(ErrConfigNotFound, "configuration file not found").
		WithContext("path", path)
}

// ConfigParseError creates a CONFIG_PARSE_FAILED error.
func ConfigParseError(path string, cause error) *SpectraError {
	return ConfigWrap(cause, ErrConfigParseFailed, "failed to parse configuration file").
		WithContext("path", path)
}

// ConfigInvalid creates a CONFIG_INVALID error for one field.
func ConfigInvalid(field, reason string) *SpectraError {
	return Config(ErrConfigInvalid, fmt.Sprintf("invalid %s: %s", field, reason)).
		WithContext("field", field)
}

// UnsupportedType creates an UPLOAD_UNSUPPORTED_TYPE error for a file name.
func UnsupportedType(name string) *SpectraError {
	return Uploadf(ErrUploadUnsupportedType, "unsupported file type: %s", name).
		WithContext("file", name)
}

// ResultNotFound creates a RESULT_NOT_FOUND error.
func ResultNotFound(ref string) *SpectraError {
	return AttachSuggestions(New(ErrResultNotFound, CategoryResult, "result not found")).
		WithContext("ref", ref)
}

// ResultExists creates a RESULT_EXISTS error.
func ResultExists(ref string) *SpectraError {
	return New(ErrResultExists, CategoryResult, "result already written").
		WithContext("ref", ref)
}

// ColumnNotFound creates a PARSE_COLUMN_NOT_FOUND error.
func ColumnNotFound(column string) *SpectraError {
	return Parsef(ErrParseColumnNotFound, "column not found: %s", column).
		WithContext("column", column)
}

// InvalidOption creates a CHART_INVALID_OPTION error.
func InvalidOption(name, value string, cause error) *SpectraError {
	err := Chartf(ErrChartInvalidOption, "invalid chart option %s=%q", name, value).
		WithContext("option", name)
	if cause != nil {
		err.WithCause(cause)
	}
	return err
}
