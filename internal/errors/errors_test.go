package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			err:      New(CodeValidation, "validation failed"),
			expected: "[VALIDATION_ERROR] validation failed",
		},
		{
			name:     "error with wrapped error",
			err:      Wrap(errors.New("dial tcp: refused"), CodeTransportFailure, "omdb search failed"),
			expected: "[TRANSPORT_FAILURE] omdb search failed: dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original")
	err := Wrap(originalErr, CodeDatabase, "wrapped")

	if unwrapped := err.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
	if !errors.Is(err, originalErr) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestTransportError(t *testing.T) {
	err := TransportError("omdb", "request failed", errors.New("timeout"))
	if err.Code != CodeTransportFailure {
		t.Errorf("expected code %s, got %s", CodeTransportFailure, err.Code)
	}
	if err.Context["service"] != "omdb" {
		t.Errorf("expected service context 'omdb', got %v", err.Context["service"])
	}
}

func TestCorruptionError(t *testing.T) {
	err := CorruptionError("favouriteMovies", errors.New("unexpected end of JSON input"))
	if err.Code != CodePersistenceCorruption {
		t.Errorf("expected code %s, got %s", CodePersistenceCorruption, err.Code)
	}
	if err.Context["key"] != "favouriteMovies" {
		t.Errorf("expected key context, got %v", err.Context["key"])
	}
}

func TestNotReadyError(t *testing.T) {
	err := NotReadyError("moviestore")
	if !IsCode(err, CodeNotReady) {
		t.Errorf("expected code %s, got %s", CodeNotReady, err.Code)
	}
}

func TestConfigError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		originalErr := errors.New("file not found")
		err := ConfigError("config load failed", originalErr)
		if err.Code != CodeConfig {
			t.Errorf("expected code %s, got %s", CodeConfig, err.Code)
		}
		if err.Err != originalErr {
			t.Errorf("expected wrapped error to be original error")
		}
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := ConfigError("missing required field", nil)
		if err.Err != nil {
			t.Errorf("expected nil wrapped error, got %v", err.Err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"service timeout", Wrap(errors.New("timeout"), CodeServiceTimeout, "timeout"), true},
		{"service unavailable", Wrap(errors.New("503"), CodeServiceUnavailable, "unavailable"), true},
		{"rate limited", New(CodeRateLimited, "rate limited"), true},
		{"wrapped rate limited", fmt.Errorf("attempt 2: %w", New(CodeRateLimited, "slow down")), true},
		{"not found", NotFoundError("movie", "tt0000000"), false},
		{"transport failure", TransportError("omdb", "decode", errors.New("bad json")), false},
		{"non-app error", errors.New("standard error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"app error", ValidationError("test"), CodeValidation},
		{"wrapped app error", fmt.Errorf("outer: %w", DatabaseError("test", errors.New("inner"))), CodeDatabase},
		{"standard error", errors.New("standard"), CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsCode_NotFound(t *testing.T) {
	if !IsCode(NotFoundError("movie", "tt0462499"), CodeNotFound) {
		t.Error("expected not found error to be detected")
	}
	if IsCode(ValidationError("nope"), CodeNotFound) {
		t.Error("validation error must not be reported as not found")
	}
}
