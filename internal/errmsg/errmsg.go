package errmsg

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int
	Message error
}

func NewHTTPError(code int, message error) HTTPError {
	return HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message.Error()
}

var (
	ErrRequestPayloadEmpty = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is empty"),
	)

	ErrRequestPayloadInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is invalid"),
	)

	ErrNoFieldsToUpdate = NewHTTPError(
		http.StatusBadRequest,
		errors.New("no fields to update"),
	)
)

var (
	ErrEntryNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("data entry not found"),
	)

	ErrEntryUnavailable = NewHTTPError(
		http.StatusConflict,
		errors.New("data entry is not available"),
	)

	ErrBulkDataEmpty = NewHTTPError(
		http.StatusBadRequest,
		errors.New("bulk data contains no parsable lines"),
	)
)

var (
	ErrUserAlreadyExists = NewHTTPError(
		http.StatusConflict,
		errors.New("user already exists"),
	)

	ErrUserNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("user not found"),
	)

	ErrAdminCredentialsInvalid = NewHTTPError(
		http.StatusUnauthorized,
		errors.New("admin credentials invalid"),
	)
)

var (
	ErrOrderNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("order not found"),
	)

	ErrOrderConflict = NewHTTPError(
		http.StatusConflict,
		errors.New("order was modified concurrently"),
	)
)
