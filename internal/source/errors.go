package source

import (
	"errors"
	"fmt"
)

// ErrUnknownSource is returned by Registry.Get for an unregistered tag.
var ErrUnknownSource = errors.New("unknown source")

// ErrUnrecognizedType marks a payment webhook whose event type is outside
// the closed mapping table. The payload is dropped without storing anything,
// but this is a policy outcome, not an ingestion failure.
var ErrUnrecognizedType = errors.New("unrecognized event type")

// ValidationError reports a malformed or missing required field in a raw
// payload. It names the offending field so callers can fix their payloads.
type ValidationError struct {
	Source string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid field %q: %s", e.Source, e.Field, e.Reason)
}

func invalid(src, field, reason string) *ValidationError {
	return &ValidationError{Source: src, Field: field, Reason: reason}
}
