package contracts

import (
	"errors"
	"fmt"
)

// NetworkError is a non-2xx response or a transport failure from a backend.
// StatusCode is 0 for transport failures.
type NetworkError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("HTTP error! Status: %d, Details: %s", e.StatusCode, e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataShapeError means a backend answered with a payload missing an expected field
type DataShapeError struct {
	Field  string
	Reason string
}

func (e *DataShapeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unexpected response shape: %s", e.Reason)
	}
	return fmt.Sprintf("unexpected response shape: %s: %s", e.Field, e.Reason)
}

// IsNetworkError reports whether err wraps a *NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsDataShapeError reports whether err wraps a *DataShapeError
func IsDataShapeError(err error) bool {
	var de *DataShapeError
	return errors.As(err, &de)
}
