// ABOUTME: Tests for embedding error classification
// ABOUTME: Maps provider status codes and deadlines onto error kinds

package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type statusError struct{ status int }

func (e statusError) Error() string   { return fmt.Sprintf("status %d", e.status) }
func (e statusError) HTTPStatus() int { return e.status }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      error
		retryable bool
	}{
		{"rate limited", statusError{429}, ErrRateLimited, true},
		{"unauthorized", statusError{401}, ErrAuthFailure, false},
		{"forbidden", statusError{403}, ErrAuthFailure, false},
		{"gateway timeout", statusError{504}, ErrTimeout, false},
		{"server error", statusError{500}, ErrProvider, false},
		{"deadline", context.DeadlineExceeded, ErrTimeout, false},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrTimeout, false},
		{"plain error", errors.New("boom"), ErrProvider, false},
		{"already classified", &Error{Kind: ErrAuthFailure}, ErrAuthFailure, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if !errors.Is(got, tt.kind) {
				t.Errorf("classify() = %v, want kind %v", got, tt.kind)
			}
			if IsRetryable(got) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(got), tt.retryable)
			}
		})
	}
}

func TestError_TimeoutAlsoMatchesProvider(t *testing.T) {
	err := &Error{Kind: ErrTimeout, Message: "slow"}
	if !errors.Is(err, ErrProvider) {
		t.Error("timeout errors should match ErrProvider")
	}
	if err.Error() != "embedding provider timed out: slow" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestError_KeepsCause(t *testing.T) {
	cause := statusError{429}
	err := classify(cause)

	var sc StatusCoder
	if !errors.As(err, &sc) || sc.HTTPStatus() != 429 {
		t.Error("classified error should expose the original cause")
	}
}
