package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code represents a stable error code for programmatic handling.
type Code string

const (
	CodeUnknown          Code = "unknown"
	CodeInvalid          Code = "invalid"
	CodeInvalidReference Code = "invalid_reference"
	CodeNotFound         Code = "not_found"
	CodeUnauthorized     Code = "unauthorized"
	CodeAlreadyExists    Code = "already_exists"
	CodeInternal         Code = "internal"
)

// metaFields is the Meta key holding per-field messages of a validation failure.
const metaFields = "fields"

// AppError is a structured error type that carries a code, message, and optional metadata.
type AppError struct {
	Code    Code
	Message string
	Err     error
	Meta    map[string]any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// WithMeta attaches metadata to the error.
func (e *AppError) WithMeta(k string, v any) *AppError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[k] = v
	return e
}

// WithField records a message for a single offending request field.
func (e *AppError) WithField(field, msg string) *AppError {
	fields := e.Fields()
	if fields == nil {
		fields = map[string]string{}
	}
	fields[field] = msg
	return e.WithMeta(metaFields, fields)
}

// Fields returns the per-field messages, or nil when none were recorded.
func (e *AppError) Fields() map[string]string {
	if e == nil || e.Meta == nil {
		return nil
	}
	f, _ := e.Meta[metaFields].(map[string]string)
	return f
}

// New creates a new AppError with code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with code and message.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Invalid builds a validation error from a field -> message map.
func Invalid(fields map[string]string) *AppError {
	e := New(CodeInvalid, "validation failed")
	if len(fields) > 0 {
		e.WithMeta(metaFields, fields)
	}
	return e
}

// MissingReference reports names in field that matched no stored entity.
func MissingReference(field string, names []string) *AppError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	quoted := make([]string, len(sorted))
	for i, n := range sorted {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	msg := "object with name " + strings.Join(quoted, ", ") + " does not exist"
	return New(CodeInvalidReference, "unknown "+field).WithField(field, msg)
}

// CodeOf returns the code of the first AppError in the chain, or CodeUnknown.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// IsCode checks if an error has the provided code (through unwrapping).
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
