package match

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Encode serializes an embedding into its portable text form: a JSON array
// of numbers. Element order and count survive the round trip exactly; this
// is the representation stored for registered reference embeddings.
func Encode(v Vector) (string, error) {
	data, err := json.Marshal([]float32(v))
	if err != nil {
		// Only NaN/Inf values can fail here; embedding models never
		// produce them, but a corrupted upstream response could.
		return "", fmt.Errorf("encoding embedding: %w", err)
	}
	return string(data), nil
}

// Decode parses an encoded embedding. When expectDim is positive the
// decoded length must match it. An empty sequence is always malformed:
// a zero-length embedding can never take part in a comparison.
func Decode(text string, expectDim int) (Vector, error) {
	var vals []float32
	if err := json.Unmarshal([]byte(text), &vals); err != nil {
		return nil, &MalformedEmbeddingError{Err: err}
	}
	if len(vals) == 0 {
		return nil, &MalformedEmbeddingError{Err: errors.New("empty sequence")}
	}
	if expectDim > 0 && len(vals) != expectDim {
		return nil, &DimensionMismatchError{Want: expectDim, Got: len(vals)}
	}
	return Vector(vals), nil
}
