package smileid

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey    = errors.New("smile id api key is not configured")
	ErrInvalidSignature = errors.New("invalid smile id signature")
)

// APIError is returned when the vendor answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("smile id returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("smile id returned status %d: %s", e.StatusCode, e.Body)
}
