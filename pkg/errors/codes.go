// Package errors provides error code constants for Spectra.
// Error codes are organized by category for consistent handling and lookup.
package errors

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigInitFailed indicates config initialization failed.
	ErrConfigInitFailed = "CONFIG_INIT_FAILED"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrValidationRequired indicates a required field is missing.
	ErrValidationRequired = "VALIDATION_REQUIRED"

	// ErrValidationInvalidValue indicates a field has an invalid value.
	ErrValidationInvalidValue = "VALIDATION_INVALID_VALUE"

	// ErrValidationInvalidJSON indicates a request body is not valid JSON.
	ErrValidationInvalidJSON = "VALIDATION_INVALID_JSON"
)

// -----------------------------------------------------------------------------
// Upload Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrUploadNoFiles indicates the upload carried no files.
	ErrUploadNoFiles = "UPLOAD_NO_FILES"

	// ErrUploadUnsupportedType indicates a file type other than csv, zip or xlsx.
	ErrUploadUnsupportedType = "UPLOAD_UNSUPPORTED_TYPE"

	// ErrUploadTooLarge indicates the upload exceeded the configured size limit.
	ErrUploadTooLarge = "UPLOAD_TOO_LARGE"

	// ErrUploadMalformed indicates the multipart body could not be read.
	ErrUploadMalformed = "UPLOAD_MALFORMED"
)

// -----------------------------------------------------------------------------
// Processor Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrProcessorUnavailable indicates the processing service cannot be reached.
	ErrProcessorUnavailable = "PROCESSOR_UNAVAILABLE"

	// ErrProcessorFailed indicates the processing service returned an error.
	ErrProcessorFailed = "PROCESSOR_FAILED"

	// ErrProcessorTimeout indicates the processing request timed out.
	ErrProcessorTimeout = "PROCESSOR_TIMEOUT"
)

// -----------------------------------------------------------------------------
// Archive Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrArchiveInvalid indicates the blob is not a readable ZIP archive.
	ErrArchiveInvalid = "ARCHIVE_INVALID"

	// ErrArchiveEmpty indicates the archive holds no CSV entries.
	ErrArchiveEmpty = "ARCHIVE_EMPTY"

	// ErrArchiveWriteFailed indicates a bundle could not be written.
	ErrArchiveWriteFailed = "ARCHIVE_WRITE_FAILED"
)

// -----------------------------------------------------------------------------
// Parse Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrParseNoHeader indicates the file has no header row.
	ErrParseNoHeader = "PARSE_NO_HEADER"

	// ErrParseFailed indicates the file could not be parsed.
	ErrParseFailed = "PARSE_FAILED"

	// ErrParseColumnNotFound indicates a requested column does not exist.
	ErrParseColumnNotFound = "PARSE_COLUMN_NOT_FOUND"

	// ErrParseNotNumeric indicates a column holds non-numeric cells.
	ErrParseNotNumeric = "PARSE_NOT_NUMERIC"
)

// -----------------------------------------------------------------------------
// Result Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrResultNotFound indicates no result is stored under the reference.
	ErrResultNotFound = "RESULT_NOT_FOUND"

	// ErrResultExists indicates a write to an already written key.
	ErrResultExists = "RESULT_EXISTS"
)

// -----------------------------------------------------------------------------
// Chart Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrChartInvalidOption indicates a chart option could not be parsed.
	ErrChartInvalidOption = "CHART_INVALID_OPTION"

	// ErrChartNoSeries indicates there is nothing to draw.
	ErrChartNoSeries = "CHART_NO_SERIES"

	// ErrChartRenderFailed indicates rasterisation failed.
	ErrChartRenderFailed = "CHART_RENDER_FAILED"
)

// -----------------------------------------------------------------------------
// IO and Internal Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrIOReadFailed indicates a file could not be read.
	ErrIOReadFailed = "IO_READ_FAILED"

	// ErrIOWriteFailed indicates a file could not be written.
	ErrIOWriteFailed = "IO_WRITE_FAILED"

	// ErrInternalError indicates an unexpected internal error.
	ErrInternalError = "INTERNAL_ERROR"

	// ErrInternalPanic indicates a recovered panic.
	ErrInternalPanic = "INTERNAL_PANIC"
)

// CodeCategory returns the category for a given error code.
// Returns CategoryInternal if the code is not recognized.
func CodeCategory(code string) Category {
	switch code {
	case ErrConfigNotFound, ErrConfigParseFailed, ErrConfigInvalid,
		ErrConfigInitFailed, ErrConfigWriteFailed:
		return CategoryConfig

	case ErrValidationRequired, ErrValidationInvalidValue, ErrValidationInvalidJSON:
		return CategoryValidation

	case ErrUploadNoFiles, ErrUploadUnsupportedType, ErrUploadTooLarge, ErrUploadMalformed:
		return CategoryUpload

	case ErrProcessorUnavailable, ErrProcessorFailed, ErrProcessorTimeout:
		return CategoryProcessor

	case ErrArchiveInvalid, ErrArchiveEmpty, ErrArchiveWriteFailed:
		return CategoryArchive

	case ErrParseNoHeader, ErrParseFailed, ErrParseColumnNotFound, ErrParseNotNumeric:
		return CategoryParse

	case ErrResultNotFound, ErrResultExists:
		return CategoryResult

	case ErrChartInvalidOption, ErrChartNoSeries, ErrChartRenderFailed:
		return CategoryChart

	case ErrIOReadFailed, ErrIOWriteFailed:
		return CategoryIO

	default:
		return CategoryInternal
	}
}
