package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey ValidationErrorType = iota
	// ErrTypeNetworkError indicates a network connectivity issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unknown error occurred.
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey verifies that the API key is valid by making a minimal text
// call against a cheap model. It returns nil if the key works, or a
// ValidationError classifying the failure. Called once at server startup, not
// per request.
func ValidateAPIKey(ctx context.Context, client *genai.Client) error {
	log.Debug().Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, "gemini-2.5-flash-lite", genai.Text("hi"), nil)
	elapsed := time.Since(start)

	if err != nil {
		return classifyError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("API key validation returned empty response")
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "API returned empty response",
		}
	}

	log.Info().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

// classifyError analyzes an error and returns a ValidationError with the appropriate type.
func classifyError(err error) *ValidationError {
	errLower := strings.ToLower(err.Error())

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 400 || apiErr.Code == 401 || apiErr.Code == 403:
			return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid or has been revoked", Err: err}
		case apiErr.Code == 429:
			return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API quota exceeded", Err: err}
		}
	}

	switch {
	case strings.Contains(errLower, "api key not valid"),
		strings.Contains(errLower, "invalid api key"),
		strings.Contains(errLower, "api_key_invalid"),
		strings.Contains(errLower, "permission denied"):
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid or has been revoked", Err: err}
	case strings.Contains(errLower, "quota"),
		strings.Contains(errLower, "rate limit"):
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API quota exceeded", Err: err}
	case strings.Contains(errLower, "connection"),
		strings.Contains(errLower, "timeout"),
		strings.Contains(errLower, "no such host"):
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Network error while validating API key", Err: err}
	}

	return &ValidationError{Type: ErrTypeUnknown, Message: "API key validation failed", Err: err}
}
