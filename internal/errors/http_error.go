package errors

import (
	"errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// ToHTTP maps a domain error to an HTTPError. Unrecognized errors become a
// generic 500 so internal details never leak to clients.
func ToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrOverlapConflict):
		return NewHTTPError(http.StatusConflict, ErrOverlapConflict.Error())
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusConflict, ErrInvalidTransition.Error())
	case errors.Is(err, ErrInvalidWindow):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidWindow.Error())
	case errors.Is(err, ErrInvalidRate):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRate.Error())
	case errors.Is(err, ErrInvalidVehicle):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidVehicle.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)
