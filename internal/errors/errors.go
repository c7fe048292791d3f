package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAuthExpired      = errors.New("authentication expired")
	ErrDeviceNotFound   = errors.New("device not found")
	ErrNotRegistered    = errors.New("device not registered")
	ErrNotInGroup       = errors.New("device is not in a group")
	ErrUnsupported      = errors.New("operation not supported by this device family")
	ErrNetworkError     = errors.New("network error")
	ErrTimeout          = errors.New("request timeout")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// ChimeError wraps an error with a user-friendly suggestion.
type ChimeError struct {
	Err        error
	Suggestion string
}

func (e *ChimeError) Error() string {
	return e.Err.Error()
}

func (e *ChimeError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &ChimeError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var chimeErr *ChimeError
	if errors.As(err, &chimeErr) && chimeErr.Suggestion != "" {
		return chimeErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Authentication errors
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrAuthExpired) ||
		strings.Contains(errStr, "not authenticated") || strings.Contains(errStr, "token expired") ||
		strings.Contains(errStr, "invalid refresh token") {
		return "Run 'chime auth login' to sign in with your Bose account"
	}

	// Device errors
	if errors.Is(err, ErrDeviceNotFound) || strings.Contains(errStr, "device not found") {
		return "Run 'chime devices --refresh' to rediscover devices on your network"
	}

	if errors.Is(err, ErrNotRegistered) {
		return "Run 'chime setup' to register the device first"
	}

	// Group errors
	if errors.Is(err, ErrNotInGroup) {
		return "Run 'chime group list' to see current groups"
	}

	// Family errors
	if errors.Is(err, ErrUnsupported) {
		return "This command only works on the other Bose device family; run 'chime devices' to check"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "timeout") || strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no route to host") {
		return "Check that the speaker is powered on and reachable, then try again"
	}

	// Config errors
	if errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'chime setup' to create a working configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
