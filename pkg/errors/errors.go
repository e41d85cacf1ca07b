// Package errors defines the typed failure modes of the retrieval engine and
// maps them to HTTP status codes at the service boundary.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDuplicateDocument is returned when an indexing operation sees a
	// document identifier that is already present. The caller must assign a
	// fresh identifier or remove the existing document first.
	ErrDuplicateDocument = errors.New("duplicate document identifier")

	// ErrUntranslatableQuery is returned when every token of a query has an
	// empty translation set. No degraded ranking is attempted: an empty
	// result would be indistinguishable from "no relevant documents".
	ErrUntranslatableQuery = errors.New("query has no translatable terms")

	// ErrEmptyIndex is returned when retrieval is attempted against an index
	// with zero documents. This is a configuration error and is never retried.
	ErrEmptyIndex = errors.New("index contains no documents")

	// ErrDependencyUnavailable is returned when the lexicon or embedding
	// provider fails to respond. Fatal for the query; retry policy belongs to
	// the caller.
	ErrDependencyUnavailable = errors.New("translation resource unavailable")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

// AppError attaches a human-readable message and an HTTP status code to one
// of the sentinel errors above.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code the service layer should
// return for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateDocument):
		return http.StatusConflict
	case errors.Is(err, ErrUntranslatableQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDependencyUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrEmptyIndex), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
