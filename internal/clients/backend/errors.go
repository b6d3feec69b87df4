package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
)

const (
	MsgConnection = "No se pudo conectar con el servidor. Verifica tu conexión."
	MsgGeneric    = "Error en la petición"
	MsgCancelled  = "La petición fue cancelada"
)

var (
	ErrConnection   = errors.New("backend unreachable")
	ErrValidation   = errors.New("invalid input")
	ErrUnsuccessful = errors.New("backend reported failure")
	ErrNoData       = errors.New("response carries no data")
)

// RequestError is a non-2xx response. Error() is the text meant for the user;
// Endpoint, Method and Status are for diagnostics.
type RequestError struct {
	Endpoint string
	Method   string
	Status   int
	Message  string
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Detail() string {
	return fmt.Sprintf("%s %s: status: %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// Unauthorized reports a rejected or missing token.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ConnectionError means the request never reached the server. The transport
// error is kept for logs and never shown.
type ConnectionError struct {
	Endpoint string
	Cause    error
}

func (e *ConnectionError) Error() string {
	return MsgConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// ValidationError is a pre-flight rejection; no request was sent.
type ValidationError struct {
	Fields  map[string]string
	Message string
}

func NewValidationError(msg string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ErrValidation.Error()
	}
	return keys[0] + ": " + e.Fields[keys[0]]
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnsuccessfulError is a 2xx response whose envelope says success: false.
type UnsuccessfulError struct {
	Message string
}

func (e *UnsuccessfulError) Error() string {
	if e.Message == "" {
		return MsgGeneric
	}
	return e.Message
}

func (e *UnsuccessfulError) Is(target error) bool {
	return target == ErrUnsuccessful
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Unauthorized()
}

// UserMessage maps any error to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		connErr  *ConnectionError
		reqErr   *RequestError
		valErr   *ValidationError
		unsucErr *UnsuccessfulError
	)
	switch {
	case errors.As(err, &connErr):
		return MsgConnection
	case errors.As(err, &reqErr):
		return reqErr.Error()
	case errors.As(err, &valErr):
		return valErr.Error()
	case errors.As(err, &unsucErr):
		return unsucErr.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return MsgCancelled
	default:
		return MsgGeneric
	}
}
