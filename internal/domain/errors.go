package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedResponse = errors.New("malformed downstream response")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrRateLimited       = errors.New("too many requests, please try again later")
	ErrRouteNotFound     = errors.New("route not found")
	ErrMethodNotAllowed  = errors.New("method not allowed")
)

// ConfigurationError means a router asked for a service that has no base URL.
type ConfigurationError struct {
	Service ServiceName
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("service %q has no configured base URL", string(e.Service))
}

// DownstreamError carries a non-2xx answer from a backend service. The gateway
// answers its own caller with the same status code.
type DownstreamError struct {
	Service    ServiceName
	StatusCode int
	Body       []byte
	Message    string
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Service, e.Message)
}

type NetworkError struct {
	Service ServiceName
	URL     string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("[%s] request to %s failed: %v", e.Service, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError is raised before any downstream call is made.
type ValidationError struct {
	Field   string
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("invalid CSV format at line %d: %s", e.Line, e.Message)
	case e.Field != "":
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error raised anywhere in the gateway to the status code
// returned to the caller.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		downstreamErr *DownstreamError
		networkErr    *NetworkError
		configErr     *ConfigurationError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &downstreamErr):
		if downstreamErr.StatusCode < 400 || downstreamErr.StatusCode > 599 {
			return http.StatusBadGateway
		}
		return downstreamErr.StatusCode
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	case errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.As(err, &configErr):
		return http.StatusInternalServerError
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrRouteNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text placed in the error envelope. Configuration and
// unexpected errors are not echoed back to callers.
func PublicMessage(err error) string {
	var (
		downstreamErr *DownstreamError
		configErr     *ConfigurationError
	)

	switch {
	case errors.As(err, &downstreamErr):
		return downstreamErr.Error()
	case errors.As(err, &configErr):
		return "Internal Server Error"
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "Internal Server Error"
	default:
		return err.Error()
	}
}
