package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoFrameworks, "no supported package managers found in project root %s", "/tmp/x")

	if err.Code != ErrCodeNoFrameworks {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoFrameworks)
	}

	want := "no supported package managers found in project root /tmp/x"
	if err.Message != want {
		t.Errorf("Message = %v, want %v", err.Message, want)
	}

	expected := "NO_FRAMEWORKS: " + want
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeGitHubAPI, cause, "star octo/repo")

	if err.Code != ErrCodeGitHubAPI {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeGitHubAPI)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeTokenMissing, "test"),
			code:     ErrCodeTokenMissing,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeDiscovery, New(ErrCodeInvalidPackage, "inner"), "outer"),
			code:     ErrCodeDiscovery,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeInvalidPackage, "test"), ErrCodeInvalidPackage},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
		{
			name:     "cause chain without codes",
			err:      Wrap(ErrCodeGitHubAPI, Wrap(ErrCodeNetwork, errors.New("connection reset"), "query octo/repo"), "reconcile"),
			expected: "reconcile: query octo/repo: connection reset",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	t.Run("with retry after", func(t *testing.T) {
		err := &RateLimitedError{RetryAfter: 60}
		expected := "rate limited: retry after 60 seconds"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("with message", func(t *testing.T) {
		err := &RateLimitedError{Message: "secondary rate limit"}
		expected := "rate limited: secondary rate limit"
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without retry after", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Error() != "rate limited" {
			t.Errorf("Error() = %v, want %v", err.Error(), "rate limited")
		}
	})

	t.Run("code method", func(t *testing.T) {
		err := &RateLimitedError{}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %v, want %v", err.Code(), ErrCodeRateLimited)
		}
	})
}
