package match

import (
	"errors"
	"fmt"
)

// ErrDegenerateVector is returned when a zero-norm embedding is compared.
// The direction of a zero vector is undefined, so its similarity is too.
var ErrDegenerateVector = errors.New("zero-norm embedding has no direction")

// DimensionMismatchError is returned when two embeddings being compared,
// or a decoded embedding and the expected dimensionality, differ in length.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// MalformedEmbeddingError is returned when an encoded embedding cannot be
// parsed as a numeric sequence.
type MalformedEmbeddingError struct {
	Err error
}

func (e *MalformedEmbeddingError) Error() string {
	return fmt.Sprintf("malformed embedding: %v", e.Err)
}

func (e *MalformedEmbeddingError) Unwrap() error {
	return e.Err
}

// InvalidThresholdError is returned when a similarity threshold falls
// outside the documented [0, 1] operating range.
type InvalidThresholdError struct {
	Threshold float64
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid similarity threshold %g: must be between 0 and 1", e.Threshold)
}
