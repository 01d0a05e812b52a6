// Package apperr is the error taxonomy shared by services and the RPC surface.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	Unauthenticated Code = "UNAUTHENTICATED"
	Forbidden       Code = "FORBIDDEN"
	NotFound        Code = "NOT_FOUND"
	Conflict        Code = "CONFLICT"
	Validation      Code = "VALIDATION"
	RateLimited     Code = "RATE_LIMITED"
	Internal        Code = "INTERNAL"
)

var httpStatus = map[Code]int{
	Unauthenticated: http.StatusUnauthorized,
	Forbidden:       http.StatusForbidden,
	NotFound:        http.StatusNotFound,
	Conflict:        http.StatusConflict,
	Validation:      http.StatusBadRequest,
	RateLimited:     http.StatusTooManyRequests,
	Internal:        http.StatusInternalServerError,
}

// HTTPStatus maps a code to its response status.
func (c Code) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeForStatus classifies a transport-level status such as a routing 404.
func CodeForStatus(status int) Code {
	for code, s := range httpStatus {
		if s == status {
			return code
		}
	}
	if status >= 400 && status < 500 {
		return Validation
	}
	return Internal
}

// Error is a classified failure. Reason distinguishes errors sharing a code
// (e.g. "already_voted" vs "slug_taken") without changing the taxonomy.
type Error struct {
	Code    Code              `json:"code"`
	Reason  string            `json:"reason,omitempty"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on code and reason so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && (t.Reason == "" || e.Reason == t.Reason)
}

func New(code Code, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// WithFields returns a copy carrying field-level detail.
func (e *Error) WithFields(fields map[string]string) *Error {
	cp := *e
	cp.Fields = fields
	return &cp
}

// Wrap classifies err as INTERNAL. The cause is kept for logs and never rendered.
func Wrap(err error, message string) *Error {
	return &Error{Code: Internal, Message: message, cause: err}
}

// From returns err as *Error, classifying anything unknown as INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, "internal error")
}

// CodeOf returns the classification of err.
func CodeOf(err error) Code {
	return From(err).Code
}

func ValidationFailed(fields map[string]string) *Error {
	return &Error{Code: Validation, Message: "invalid input", Fields: fields}
}
