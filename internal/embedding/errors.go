// ABOUTME: Engine-level error kinds for embedding generation
// ABOUTME: Normalizes provider failures into rate-limit, auth, timeout and generic kinds
package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only text
	ErrEmptyInput = errors.New("text cannot be empty")
	// ErrRateLimited means the provider throttled the request; callers may retry after backoff
	ErrRateLimited = errors.New("embedding provider rate limit exceeded")
	// ErrAuthFailure means the provider rejected our credentials
	ErrAuthFailure = errors.New("embedding provider authentication failed")
	// ErrProvider wraps any other upstream failure
	ErrProvider = errors.New("embedding generation failed")
	// ErrTimeout means the provider call exceeded its deadline. Timeout errors
	// also match ErrProvider.
	ErrTimeout = errors.New("embedding provider timed out")
)

// StatusCoder is implemented by provider errors that carry an HTTP status
type StatusCoder interface {
	HTTPStatus() int
}

// Error is a classified embedding failure
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

// Unwrap exposes the kind sentinel and the original cause to errors.Is/As
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Kind == ErrTimeout {
		errs = append(errs, ErrProvider)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsRetryable reports whether a caller may retry after backoff
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// classify maps a raw provider error onto an engine error kind
func classify(err error) error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: ErrTimeout, Message: err.Error(), Err: err}
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		switch sc.HTTPStatus() {
		case http.StatusTooManyRequests:
			return &Error{Kind: ErrRateLimited, Message: "please try again later", Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Kind: ErrAuthFailure, Message: "invalid API key", Err: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &Error{Kind: ErrTimeout, Message: err.Error(), Err: err}
		}
	}

	return &Error{Kind: ErrProvider, Message: err.Error(), Err: err}
}
