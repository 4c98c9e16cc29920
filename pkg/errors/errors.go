// Package errors defines the coded errors metromap returns at its edges.
//
// The geometry core never fails. Errors come from decoding career maps,
// loading config, talking to cache and store backends, and looking up
// stored maps. Each carries a [Code] for programs, a message for people,
// and optionally the document [Error.Field] it refers to:
//
//	return errs.New(errs.ErrCodeInvalidInput, "role has no id").
//	    At("paths[%d].roles[%d].id", i, j)
//
// Codes fall into a few classes ([ClassOf]). The API server turns the
// class into an HTTP status and the CLI turns it into an exit code.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidColor   Code = "INVALID_COLOR"
	ErrCodeInvalidMapID   Code = "INVALID_MAP_ID"
	ErrCodeInvalidStation Code = "INVALID_STATION"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeMapNotFound  Code = "MAP_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Class groups codes by who has to act on them.
type Class int

const (
	ClassInternal Class = iota // a bug, or an error without a code
	ClassInvalid               // the caller sent something wrong
	ClassNotFound              // a map, file or station does not exist
	ClassUnsupported           // valid request metromap cannot serve
	ClassBackend               // cache or store unavailable or slow
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:   ClassInvalid,
	ErrCodeInvalidFormat:  ClassInvalid,
	ErrCodeInvalidConfig:  ClassInvalid,
	ErrCodeInvalidColor:   ClassInvalid,
	ErrCodeInvalidMapID:   ClassInvalid,
	ErrCodeInvalidStation: ClassInvalid,
	ErrCodeNotFound:       ClassNotFound,
	ErrCodeMapNotFound:    ClassNotFound,
	ErrCodeFileNotFound:   ClassNotFound,
	ErrCodeUnsupported:    ClassUnsupported,
	ErrCodeStorage:        ClassBackend,
	ErrCodeTimeout:        ClassBackend,
}

// Class returns the class of c. Unknown codes are internal.
func (c Code) Class() Class { return classes[c] }

// Error is a coded error with an optional field and cause.
type Error struct {
	Code    Code
	Message string

	// Field locates the problem inside a career map document, e.g.
	// "paths[1].roles[0].id". Empty when the error is not about a field.
	Field string

	Cause error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": "
	if e.Field != "" {
		msg += e.Field + ": "
	}
	msg += e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// At sets the document field the error refers to and returns e.
func (e *Error) At(field string, args ...any) *Error {
	e.Field = fmt.Sprintf(field, args...)
	return e
}

// Locate sets the field of err's outermost *Error unless it already has
// one, and returns err. Other errors are returned unchanged.
func Locate(err error, field string, args ...any) error {
	if e, ok := outermost(err); ok && e.Field == "" {
		e.At(field, args...)
	}
	return err
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message and cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Backend wraps a failed cache or store call. Deadline errors get
// ErrCodeTimeout, everything else ErrCodeStorage.
func Backend(cause error, format string, args ...any) *Error {
	code := ErrCodeStorage
	if errors.Is(cause, context.DeadlineExceeded) {
		code = ErrCodeTimeout
	}
	return Wrap(code, cause, format, args...)
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error, or "".
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// and field, or err.Error() for other errors.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// FieldOf returns the document field of the outermost *Error, if any.
func FieldOf(err error) string {
	if e, ok := outermost(err); ok {
		return e.Field
	}
	return ""
}

// ClassOf returns the class of err's code. Errors without a code are
// internal.
func ClassOf(err error) Class { return GetCode(err).Class() }

func IsNotFound(err error) bool { return ClassOf(err) == ClassNotFound }
func IsInvalid(err error) bool  { return ClassOf(err) == ClassInvalid }

// ExitCode maps err to a process exit status: 0 for nil, 2 for invalid
// input, 3 for missing resources, 4 for backend failures and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch ClassOf(err) {
	case ClassInvalid:
		return 2
	case ClassNotFound:
		return 3
	case ClassBackend:
		return 4
	default:
		return 1
	}
}
