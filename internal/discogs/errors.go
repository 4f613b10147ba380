package discogs

import "fmt"

// ErrUnavailable indicates a transient failure (rate-limited after retries,
// timeout, server error). Remaining carries the upstream rate-limit header
// when one was present.
type ErrUnavailable struct {
	Cause     error
	Remaining string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("discogs unavailable: %v", e.Cause)
}

func (e *ErrUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the catalog has no data for the requested resource.
type ErrNotFound struct {
	URL string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("discogs: not found: %s", e.URL)
}

// ErrAuthRequired indicates the token is missing or rejected.
type ErrAuthRequired struct{}

func (e *ErrAuthRequired) Error() string {
	return "discogs: authentication required"
}
