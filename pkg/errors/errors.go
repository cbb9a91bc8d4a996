// Package errors provides structured error types for thankstars.
//
// This package defines error codes that let the CLI classify a failure
// without string matching:
//   - NO_FRAMEWORKS: nothing in the project root was recognised
//   - TOKEN_MISSING: no GitHub token in the environment or config file
//   - DISCOVERY_FAILED: an ecosystem discoverer failed
//   - GITHUB_API: GitHub answered with an error status or GraphQL errors
//   - NETWORK_*: transport failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoFrameworks, "no supported package managers found in project root %s", root)
//	if errors.Is(err, errors.ErrCodeNoFrameworks) {
//	    // suggest --only
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeGitHubAPI, origErr, "star %s", repo)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Usage errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFramework Code = "INVALID_FRAMEWORK"
	ErrCodeInvalidPackage   Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeNoFrameworks     Code = "NO_FRAMEWORKS"

	// Discovery errors
	ErrCodeDiscovery Code = "DISCOVERY_FAILED"
	ErrCodeNotFound  Code = "NOT_FOUND"

	// Remote errors
	ErrCodeGitHubAPI   Code = "GITHUB_API"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication and configuration errors
	ErrCodeTokenMissing Code = "TOKEN_MISSING"
	ErrCodeUnauthorized Code = "UNAUTHORIZED"
	ErrCodeConfig       Code = "CONFIG_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the error rendered for a terminal: the message of the
// outermost *Error followed by its full cause chain, without code prefixes.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	if e.Message != "" {
		return "rate limited: " + e.Message
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
