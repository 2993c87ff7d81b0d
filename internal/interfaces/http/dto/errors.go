package dto

import "net/http"

// Error code constants used by the API surface. Domain errors carry their
// own codes; the mapping below decides the HTTP status for each.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used for request and business validation errors
	ErrCodeValidation = "VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes (API and domain) to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	// Domain error taxonomy
	"INVALID_CODE":         http.StatusBadRequest,
	"INVALID_INPUT":        http.StatusBadRequest,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"DATA_SHAPE":           http.StatusUnprocessableEntity,
	"NOT_RECOVERABLE":      http.StatusUnprocessableEntity,
	"SYNC_IN_PROGRESS":     http.StatusConflict,
	"TRANSIENT_EXTERNAL":   http.StatusBadGateway,
	"EXTERNAL_AUTH_FAILED": http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
