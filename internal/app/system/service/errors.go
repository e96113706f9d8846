package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Registry errors.
var (
	ErrFrozen        = errors.New("registry is frozen")
	ErrDuplicatePath = errors.New("service path already registered")
	ErrEmptyPath     = errors.New("service path is empty")
	ErrNoMethods     = errors.New("service implements no methods")
	ErrNilHook       = errors.New("hook is nil")
	ErrInvalidPhase  = errors.New("invalid hook phase")
)

func errInvalidMethod(m Method) error {
	return fmt.Errorf("invalid hook method %q", m)
}

// Error is a classified failure that transports render to callers.
type Error struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Name + ": " + e.Message
}

// Is matches another *Error of the same class when target carries no
// message, so errors.Is(err, ErrNotAuthenticated) works for any message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// Error classes.
var (
	ErrBadRequest       = &Error{Code: http.StatusBadRequest, Name: "BadRequest"}
	ErrNotAuthenticated = &Error{Code: http.StatusUnauthorized, Name: "NotAuthenticated"}
	ErrForbidden        = &Error{Code: http.StatusForbidden, Name: "Forbidden"}
	ErrNotFound         = &Error{Code: http.StatusNotFound, Name: "NotFound"}
	ErrMethodNotAllowed = &Error{Code: http.StatusMethodNotAllowed, Name: "MethodNotAllowed"}
	ErrConflict         = &Error{Code: http.StatusConflict, Name: "Conflict"}
	ErrUnsupportedMedia = &Error{Code: http.StatusUnsupportedMediaType, Name: "UnsupportedMediaType"}
	ErrTooManyRequests  = &Error{Code: http.StatusTooManyRequests, Name: "TooManyRequests"}
	ErrGeneral          = &Error{Code: http.StatusInternalServerError, Name: "GeneralError"}
)

func newError(class *Error, format string, args ...any) *Error {
	return &Error{Code: class.Code, Name: class.Name, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error {
	return newError(ErrBadRequest, format, args...)
}

func NotAuthenticated(format string, args ...any) *Error {
	return newError(ErrNotAuthenticated, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(ErrForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(ErrNotFound, format, args...)
}

func MethodNotAllowed(format string, args ...any) *Error {
	return newError(ErrMethodNotAllowed, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(ErrConflict, format, args...)
}

func UnsupportedMedia(format string, args ...any) *Error {
	return newError(ErrUnsupportedMedia, format, args...)
}

func TooManyRequests(format string, args ...any) *Error {
	return newError(ErrTooManyRequests, format, args...)
}

func GeneralError(format string, args ...any) *Error {
	return newError(ErrGeneral, format, args...)
}

// AsError returns the classified error inside err. Unclassified errors
// become a GeneralError that does not expose the original message.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return GeneralError("internal error")
}

// HookError reports which step of a chain failed. It unwraps to the error
// the step returned.
type HookError struct {
	Path   string
	Method Method
	Phase  Phase
	Index  int // position within the phase; 0 for the handler
	Err    error
}

func (e *HookError) Error() string {
	if e.Phase == PhaseHandler {
		return fmt.Sprintf("%s.%s handler: %v", e.Path, e.Method, e.Err)
	}
	return fmt.Sprintf("%s.%s %s hook %d: %v", e.Path, e.Method, e.Phase, e.Index, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
