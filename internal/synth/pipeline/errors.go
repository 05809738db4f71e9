package pipeline

import "fmt"

// InvalidInputError rejects a malformed request. Never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// UnavailableError reports that the model for the request could not be
// acquired. Safe to retry after backoff; the cache is left consistent.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("service unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// GenerationError reports that the model loaded but rendering failed or
// produced no audio.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("speech generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
