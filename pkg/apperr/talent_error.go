package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP layer.
type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindUpstreamWriteFailure Kind = "UPSTREAM_WRITE_FAILURE"
	KindUpstreamReadFailure  Kind = "UPSTREAM_READ_FAILURE"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindMalformedInput       Kind = "MALFORMED_INPUT"
	KindAlreadyExists        Kind = "ALREADY_EXISTS"
	KindInternal             Kind = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Kind    Kind     `json:"code"`
	Message string   `json:"message"`
	Status  int      `json:"-"`
	Errors  []string `json:"errors,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError attaches the underlying cause.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithDetail appends a human readable detail rendered in the envelope's errors list.
func (e *AppError) WithDetail(detail string) *AppError {
	e.Errors = append(e.Errors, detail)
	return e
}

func New(kind Kind, message string, status int) *AppError {
	return &AppError{Kind: kind, Message: message, Status: status}
}

func NotFound(resource string) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func UpstreamWriteFailure(operation string, err error) *AppError {
	return &AppError{
		Kind:    KindUpstreamWriteFailure,
		Message: fmt.Sprintf("failed to %s", operation),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func UpstreamReadFailure(operation string, err error) *AppError {
	return &AppError{
		Kind:    KindUpstreamReadFailure,
		Message: fmt.Sprintf("failed to %s", operation),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return New(KindUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return New(KindForbidden, message, http.StatusForbidden)
}

func MalformedInput(message string) *AppError {
	return New(KindMalformedInput, message, http.StatusBadRequest)
}

func InvalidParam(name, value string) *AppError {
	return MalformedInput(fmt.Sprintf("invalid value for '%s'", name)).
		WithDetail(fmt.Sprintf("%s: cannot parse %q", name, value))
}

func AlreadyExists(resource string) *AppError {
	return New(KindAlreadyExists, fmt.Sprintf("%s already exists", resource), http.StatusConflict)
}

func Internal(message string) *AppError {
	if message == "" {
		message = "internal server error"
	}
	return New(KindInternal, message, http.StatusInternalServerError)
}

func InternalWithError(err error) *AppError {
	return Internal("").WithError(err)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalWithError(err)
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
