// Package errors provides structured errors for title state and the HTTP surface.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Title state errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeMalformedPart   Code = "MALFORMED_PART"
	CodeBindingReleased Code = "BINDING_RELEASED"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps the code to an HTTP status.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument, CodeMalformedPart:
		return http.StatusBadRequest
	case CodeBindingReleased:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
