package fetch

import "fmt"

// ExhaustedError reports that every retry attempt for one logical fetch
// failed. It carries the last underlying error for diagnosis.
//
// Failures local to one document or identifier are recoverable at the
// pipeline level; only the seed document's fetch treats this error as
// fatal. Callers distinguish it from other failures with errors.As.
type ExhaustedError struct {
	// URL is the request that failed.
	URL string

	// Attempts is how many attempts were made.
	Attempts int

	// Err is the error from the final attempt.
	Err error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch of %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// URL is the request that produced it.
	URL string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
