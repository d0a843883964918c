// Package match implements the face matching core: the embedding codec,
// cosine similarity scoring, threshold-based presence resolution and visual
// annotation of match outcomes. It consumes candidates produced by the
// external detector service and never touches the detection model itself.
package match

// DefaultDim is the embedding dimensionality produced by the ArcFace face
// models the detector service runs.
const DefaultDim = 512

// DefaultThreshold is the minimum cosine similarity at which two face
// embeddings are declared the same identity.
const DefaultThreshold = 0.6

// Vector is a face embedding: an ordered, fixed-length sequence of features.
type Vector []float32

// Candidate is one detected face within a group photo, as produced by the
// external detector. BBox is [x1, y1, x2, y2] in pixel coordinates.
type Candidate struct {
	Index     int       `json:"index"`
	BBox      []float64 `json:"bbox"`
	Embedding Vector    `json:"embedding,omitempty"`
}

// Result is the similarity outcome for a single candidate. Results keep the
// input candidate order so downstream consumers can map back to image
// regions by index.
type Result struct {
	CandidateIndex int     `json:"index"`
	Similarity     float64 `json:"similarity"`
	IsMatch        bool    `json:"is_match"`
}

// Report is the complete, deterministic outcome of comparing one reference
// embedding against a set of candidates. BestIndex is -1 and BestSimilarity
// zero when Matches is empty (no faces detected).
type Report struct {
	Found          bool     `json:"found"`
	BestSimilarity float64  `json:"best_similarity"`
	BestIndex      int      `json:"best_index"`
	Threshold      float64  `json:"threshold"`
	Matches        []Result `json:"matches"`
}

// HasBest reports whether any candidate was scored at all.
func (r *Report) HasBest() bool {
	return r.BestIndex >= 0
}
