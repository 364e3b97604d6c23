package completion

import (
	"errors"
	"fmt"
)

var (
	ErrNoAPIKey      = errors.New("OPENAI_API_KEY not set")
	ErrEmptyResponse = errors.New("empty response from completion API")
)

// APIError is a non-2xx answer from the completion API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion API error (HTTP %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
