package market

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable marks a provider response with no usable data. A ticker
// that does not exist and a ticker with no trades in the window look the same
// upstream, so both surface as this sentinel.
var ErrDataUnavailable = errors.New("market data unavailable")

// APIError carries the HTTP status of a failed provider call.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}
