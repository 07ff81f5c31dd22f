package errors

import "net/http"

// HTTPStatus maps an error to the status code the API answers with.
// Errors outside the SpectraError family map to 500.
func HTTPStatus(err error) int {
	se, ok := AsSpectraError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch se.Code {
	case ErrUploadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrUploadUnsupportedType:
		return http.StatusUnsupportedMediaType
	case ErrResultExists:
		return http.StatusConflict
	case ErrProcessorTimeout:
		return http.StatusGatewayTimeout
	case ErrChartNoSeries:
		return http.StatusUnprocessableEntity
	case ErrChartRenderFailed:
		return http.StatusInternalServerError
	}

	switch se.Category {
	case CategoryValidation, CategoryUpload, CategoryChart:
		return http.StatusBadRequest
	case CategoryResult:
		return http.StatusNotFound
	case CategoryProcessor:
		return http.StatusBadGateway
	case CategoryArchive, CategoryParse:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
