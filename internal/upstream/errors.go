package upstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for the provider client. Handlers map these onto HTTP
// statuses; everything else is treated as an internal failure.
var (
	// ErrNotConfigured means no provider API key was supplied. Surfaced as a
	// 500 configuration error on each request rather than a startup failure.
	ErrNotConfigured = errors.New("weather provider API key not configured")

	// ErrCityNotFound means the geocoder returned no match for a city name.
	ErrCityNotFound = errors.New("city not found")

	// ErrNetwork wraps connectivity failures (DNS, refused, timeout).
	ErrNetwork = errors.New("network failure")
)

// StatusError is a non-success response from the provider. The original
// status code is preserved so handlers can propagate it to the client.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream HTTP %d: %s", e.StatusCode, e.Message)
}

// AsStatusError unwraps a StatusError from err, if present.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
