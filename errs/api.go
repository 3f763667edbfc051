package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinels matched with errors.Is through APIError.Unwrap.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("operation not allowed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidPage  = errors.New("invalid page")
)

// FieldErrors maps an API field name to its messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

func (f FieldErrors) Has(field string) bool {
	_, ok := f[field]
	return ok
}

// Err returns nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f)
}

type APIError struct {
	Status  int
	Message string
	Fields  FieldErrors
	err     error
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], " ")))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *APIError) Unwrap() error {
	return e.err
}

func Validation(fields FieldErrors) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: "Validation failed", Fields: fields, err: ErrValidation}
}

// FieldError is a single-field validation error.
func FieldError(field, message string) *APIError {
	return Validation(FieldErrors{field: {message}})
}

func NotFound(entity string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: "No " + entity + " matches the given query.", err: ErrNotFound}
}

func Forbidden(message string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: message, err: ErrForbidden}
}

func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message, err: ErrUnauthorized}
}

func InvalidPage() *APIError {
	return &APIError{Status: http.StatusNotFound, Message: "Invalid page.", err: ErrInvalidPage}
}

// FieldsOf returns the per-field messages carried by err, if any.
func FieldsOf(err error) FieldErrors {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
