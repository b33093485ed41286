// Package apperr defines the application error taxonomy. Every error that
// crosses a component boundary carries a stable Kind; the HTTP layer maps
// kinds to status codes and never exposes wrapped internals.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindAIService       Kind = "ai_service_error"
	KindGenerationParse Kind = "generation_parse_error"
	KindFileTooLarge    Kind = "file_too_large"
	KindPipeline        Kind = "pipeline_error"
	KindStorage         Kind = "storage_error"
	KindInternal        Kind = "internal_error"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FileTooLarge reports a generated file exceeding the size ceiling. The
// filename and observed size are part of the contract, so callers can
// inspect them with errors.As.
type FileTooLarge struct {
	Filename string
	Size     int64
	Limit    int64
}

func (e *FileTooLarge) Error() string {
	return fmt.Sprintf("generated file %q is %d bytes, exceeds the %d byte limit", e.Filename, e.Size, e.Limit)
}

// PipelineError marks which stage of a generation batch failed.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline stage %q failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// KindOf classifies any error into a Kind. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ftl *FileTooLarge
	if errors.As(err, &ftl) {
		return KindFileTooLarge
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		if k := KindOf(pe.Err); k != KindInternal {
			return k
		}
		return KindPipeline
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Message returns the user-facing message for an error. Wrapped causes are
// never included; unknown errors collapse to a generic message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ftl *FileTooLarge
	if errors.As(err, &ftl) {
		return ftl.Error()
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error's kind to the HTTP status the thin API layer
// should respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindFileTooLarge:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAIService, KindGenerationParse, KindPipeline:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
