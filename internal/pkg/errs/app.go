package errs

import (
	"net/http"
	"sync"
)

// Kind groups application errors by how a caller should react to them.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindConflict    Kind = "conflict"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// AppError is a typed application error with a stable code.
// Instances are package-level sentinels; compare with Is, never by message.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the same request may succeed later without changes.
func (e *AppError) Retryable() bool {
	return e.Kind == KindUnavailable
}

var (
	registryMu sync.RWMutex
	registry   []*AppError
)

func newApp(kind Kind, code, msg string) *AppError {
	e := &AppError{Kind: kind, Code: code, Message: msg}
	registryMu.Lock()
	registry = append(registry, e)
	registryMu.Unlock()
	return e
}

func Validation(code, msg string) *AppError  { return newApp(KindValidation, code, msg) }
func Conflict(code, msg string) *AppError    { return newApp(KindConflict, code, msg) }
func NotFound(code, msg string) *AppError    { return newApp(KindNotFound, code, msg) }
func Forbidden(code, msg string) *AppError   { return newApp(KindForbidden, code, msg) }
func Unavailable(code, msg string) *AppError { return newApp(KindUnavailable, code, msg) }
func Internal(code, msg string) *AppError    { return newApp(KindInternal, code, msg) }

// Classify resolves err to the application error it wraps or was marked with.
// Returns nil for errors that carry no application code.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if As(err, &app) {
		return app
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, candidate := range registry {
		if Is(err, candidate) {
			return candidate
		}
	}
	return nil
}
