package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindUpstream
)

var kindNames = map[Kind]string{
	KindInternal:       "INTERNAL_ERROR",
	KindValidation:     "VALIDATION_ERROR",
	KindAuthentication: "UNAUTHORIZED",
	KindAuthorization:  "FORBIDDEN",
	KindNotFound:       "NOT_FOUND",
	KindConflict:       "CONFLICT",
	KindUpstream:       "UPSTREAM_ERROR",
}

var kindStatus = map[Kind]int{
	KindInternal:       http.StatusInternalServerError,
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
	KindUpstream:       http.StatusBadGateway,
}

func (k Kind) String() string {
	return kindNames[k]
}

// Error is the error type handlers return. Message is the localized text shown
// to the client, Details are the machine-facing reasons.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	// Status overrides the default status of Kind when non-zero.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return kindStatus[e.Kind]
}

func (e *Error) Code() string {
	return e.Kind.String()
}

func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(kind Kind, message string, details []string) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func Validation(message string, details ...string) *Error {
	return newError(KindValidation, message, details)
}

func Authentication(message string, details ...string) *Error {
	return newError(KindAuthentication, message, details)
}

func Authorization(message string, details ...string) *Error {
	return newError(KindAuthorization, message, details)
}

func NotFound(message string, details ...string) *Error {
	return newError(KindNotFound, message, details)
}

func Conflict(message string, details ...string) *Error {
	return newError(KindConflict, message, details)
}

func Upstream(message string, details ...string) *Error {
	return newError(KindUpstream, message, details)
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts an *Error from err. Any other error is reported as internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Terjadi kesalahan pada server", err)
}

func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
