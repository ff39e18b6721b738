package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrMalformedObservation = errors.New("malformed observation")
	ErrUnknownGene          = errors.New("unknown gene")
	ErrUnsupportedSource    = errors.New("unsupported observation source")

	// Statistics errors, recovered inside the evaluator
	ErrDegenerateTable = errors.New("degenerate contingency table")

	// Persistence errors
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// NewMalformedObservationError reports a missing or mistyped field of the
// observation at position index in the source.
func NewMalformedObservationError(index int, field string, reason string) error {
	return fmt.Errorf("%w: record %d: field %q %s", ErrMalformedObservation, index, field, reason)
}

func NewUnknownGeneError(gene string) error {
	return fmt.Errorf("%w: %s", ErrUnknownGene, gene)
}

func NewDegenerateTableError(a, b, c, d int) error {
	return fmt.Errorf("%w: [[%d %d] [%d %d]]", ErrDegenerateTable, a, b, c, d)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedObservation) ||
		errors.Is(err, ErrUnknownGene) ||
		errors.Is(err, ErrUnsupportedSource)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
