package scoring

import (
	"errors"
	"fmt"

	"fraudguard/internal/features"
)

// ErrModelUnavailable signals that the artifact trio never loaded. It is a
// service-level not-ready condition: callers should retry later, handlers map
// it to 503, and it short-circuits before validation so a broken deployment
// fails fast and uniformly.
var ErrModelUnavailable = errors.New("model artifacts not loaded")

// ThresholdError rejects an out-of-range decision threshold before any model
// work happens.
type ThresholdError struct {
	Value float64
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("threshold must be between 0 and 1, got %g", e.Value)
}

// ScoringError wraps an unexpected failure inside the scaling or scoring
// adapters. It is internal: handlers log the cause and surface only an opaque
// failure to the caller.
type ScoringError struct {
	Stage string // "assemble", "scale" or "score"
	Err   error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed at %s: %v", e.Stage, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a client-input problem (including
// a bad threshold) as opposed to a system fault.
func IsValidationError(err error) bool {
	var ve *features.ValidationError
	var te *ThresholdError
	return errors.As(err, &ve) || errors.As(err, &te)
}
