package dexscreener

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyAddress is returned when looking up an empty address.
	ErrEmptyAddress = errors.New("empty token address")

	// ErrInvalidResponse is returned when the API answers with a body that
	// is not a JSON document.
	ErrInvalidResponse = errors.New("invalid API response")
)

// APIError is returned when the API answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API failed: %s", e.Status)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
