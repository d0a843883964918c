package handlers

import (
	"bytes"
	"image"
	"image/jpeg"
	"net/http"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/kozaktomas/face-check/internal/database"
	"github.com/kozaktomas/face-check/internal/match"
)

// PresenceHandler handles presence check endpoints.
type PresenceHandler struct {
	repo      database.PersonReader
	detector  FaceDetector
	threshold float64
	style     match.Style
}

// NewPresenceHandler creates a new presence handler.
func NewPresenceHandler(repo database.PersonReader, det FaceDetector, threshold float64, style match.Style) *PresenceHandler {
	return &PresenceHandler{
		repo:      repo,
		detector:  det,
		threshold: threshold,
		style:     style,
	}
}

// CheckResponse reports whether a person was found in a group photo.
// Best fields are omitted when the photo contains no faces.
type CheckResponse struct {
	Person         string         `json:"person"`
	Found          bool           `json:"found"`
	Threshold      float64        `json:"threshold"`
	TotalFaces     int            `json:"total_faces"`
	BestSimilarity *float64       `json:"best_similarity,omitempty"`
	BestIndex      *int           `json:"best_index,omitempty"`
	Matches        []match.Result `json:"matches"`
}

// requestThreshold returns the match threshold for a request, honoring an
// optional "threshold" form value. Validation happens in match.Resolve.
func (h *PresenceHandler) requestThreshold(r *http.Request) (float64, error) {
	raw := r.FormValue("threshold")
	if raw == "" {
		return h.threshold, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// resolvePresence runs the full detect-and-match pipeline for a request.
func (h *PresenceHandler) resolvePresence(
	w http.ResponseWriter, r *http.Request,
) (*database.StoredPerson, []match.Candidate, *match.Report, bool) {
	photo, err := readPhotoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, nil, nil, false
	}

	name := strings.TrimSpace(r.FormValue("person"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "person is required")
		return nil, nil, nil, false
	}

	threshold, err := h.requestThreshold(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid threshold value")
		return nil, nil, nil, false
	}

	person, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		respondMatchError(w, err)
		return nil, nil, nil, false
	}

	candidates, err := h.detector.DetectFaces(r.Context(), photo)
	if err != nil {
		respondMatchError(w, err)
		return nil, nil, nil, false
	}

	report, err := match.Resolve(match.Vector(person.Embedding), candidates, threshold)
	if err != nil {
		respondMatchError(w, err)
		return nil, nil, nil, false
	}

	return person, candidates, report, true
}

// Check determines whether a registered person appears in the uploaded
// group photo.
func (h *PresenceHandler) Check(w http.ResponseWriter, r *http.Request) {
	person, candidates, report, ok := h.resolvePresence(w, r)
	if !ok {
		return
	}

	resp := CheckResponse{
		Person:     person.Name,
		Found:      report.Found,
		Threshold:  report.Threshold,
		TotalFaces: len(candidates),
		Matches:    report.Matches,
	}
	if report.HasBest() {
		resp.BestSimilarity = &report.BestSimilarity
		resp.BestIndex = &report.BestIndex
	}

	respondJSON(w, http.StatusOK, resp)
}

// Annotate returns the group photo with bounding boxes drawn around every
// detected face, colored by match outcome, as a JPEG.
func (h *PresenceHandler) Annotate(w http.ResponseWriter, r *http.Request) {
	_, candidates, report, ok := h.resolvePresence(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unsupported image format")
		return
	}

	annotated, err := match.Annotate(img, report, candidates, h.style)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, annotated, &jpeg.Options{Quality: 90}); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode annotated image")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// IdentifiedFace is one detected face with its closest registered person.
type IdentifiedFace struct {
	Index      int                    `json:"index"`
	BBox       []float64              `json:"bbox"`
	Person     *database.StoredPerson `json:"person,omitempty"`
	Similarity *float64               `json:"similarity,omitempty"`
	IsMatch    bool                   `json:"is_match"`
}

// Identify detects every face in the photo and pairs each with the most
// similar registered person.
func (h *PresenceHandler) Identify(w http.ResponseWriter, r *http.Request) {
	photo, err := readPhotoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold, err := h.requestThreshold(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid threshold value")
		return
	}
	if threshold < 0 || threshold > 1 {
		respondMatchError(w, &match.InvalidThresholdError{Threshold: threshold})
		return
	}

	candidates, err := h.detector.DetectFaces(r.Context(), photo)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	faces := make([]IdentifiedFace, 0, len(candidates))
	for _, c := range candidates {
		face := IdentifiedFace{Index: c.Index, BBox: c.BBox}

		matches, err := h.repo.FindNearest(r.Context(), c.Embedding, 1)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(matches) > 0 {
			best := matches[0]
			face.Person = &best.Person
			face.Similarity = &best.Similarity
			face.IsMatch = best.Similarity >= threshold
		}

		faces = append(faces, face)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_faces": len(faces),
		"threshold":   threshold,
		"faces":       faces,
	})
}
