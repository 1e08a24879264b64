package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface keeps the handler layer free of type switches
// over concrete error types.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input.
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure.
	UnauthorizedError struct {
		Message string
	}

	// ConfigurationError indicates a required collaborator credential is
	// missing. Fatal: surfaced as 500 (or a pre-stream error event), never
	// degraded around.
	ConfigurationError struct {
		Message string
	}

	// GenerationError indicates the answer-generation call itself failed.
	// Fatal to the request; reported as the terminal error event.
	GenerationError struct {
		Message string
		Cause   error
	}
)

func (e *NotFoundError) Error() string      { return e.Message }
func (e *ValidationError) Error() string    { return e.Message }
func (e *UnauthorizedError) Error() string  { return e.Message }
func (e *ConfigurationError) Error() string { return e.Message }

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int    { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int  { return http.StatusUnauthorized }
func (e *ConfigurationError) StatusCode() int { return http.StatusInternalServerError }

// Sentinel errors - use with errors.Is().
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRankingUnavailable marks the AI ranking step as unusable for this
	// request. Always recovered via the deterministic fallback; never
	// surfaced to the caller.
	ErrRankingUnavailable = errors.New("ranking unavailable")
)

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
