package catalog

import (
	"fmt"
	"time"
)

// ErrRemoteUnavailable indicates the catalog could not be reached or refused
// the request (network failure, rate limit, server error).
type ErrRemoteUnavailable struct {
	Op         string
	Cause      error
	RetryAfter time.Duration
}

func (e *ErrRemoteUnavailable) Error() string {
	return fmt.Sprintf("catalog unavailable during %s: %v", e.Op, e.Cause)
}

func (e *ErrRemoteUnavailable) Unwrap() error { return e.Cause }

// ErrNotFound indicates the catalog has no record for the requested ID.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("catalog: %s %s not found", e.Kind, e.ID)
}

// ErrMalformedDate indicates a release date that could not be parsed.
type ErrMalformedDate struct {
	Value string
}

func (e *ErrMalformedDate) Error() string {
	return fmt.Sprintf("malformed release date %q", e.Value)
}

// ErrMissingField indicates an optional field the caller asked for is absent.
type ErrMissingField struct {
	Record string
	ID     string
	Field  string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("%s %s has no %s", e.Record, e.ID, e.Field)
}
