package match

import "math"

// CosineSimilarity computes the cosine of the angle between two embeddings.
// Inputs are not assumed to be unit-normalized; norms are computed
// explicitly. The result is clamped to [-1, 1] so threshold comparisons
// never see floating point overshoot.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Want: len(a), Got: len(b)}
	}
	if len(a) == 0 {
		return 0, ErrDegenerateVector
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim, nil
}
