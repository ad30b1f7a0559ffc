package llm

import (
	"errors"
	"fmt"
)

var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// ConfigurationError means a required credential or setting is absent.
// There is no fallback for the completion endpoint.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("llm: missing configuration: %s", e.Key)
}

// UpstreamError is a non-success response or unparsable body from the
// completion endpoint.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Body)
}

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
