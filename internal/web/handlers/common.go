// Package handlers implements the HTTP API for the face presence service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kozaktomas/face-check/internal/database"
	"github.com/kozaktomas/face-check/internal/detector"
	"github.com/kozaktomas/face-check/internal/match"
)

// maxUploadSize limits uploaded photo size to 32 MB.
const maxUploadSize = 32 << 20

// FaceDetector is the face detection collaborator used by handlers.
// Satisfied by detector.Client and stubbed in tests.
type FaceDetector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]match.Candidate, error)
	DetectLargestFace(ctx context.Context, imageData []byte) (match.Candidate, error)
	Dim() int
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondMatchError maps domain errors to HTTP status codes. Caller input
// problems map to 4xx, detection collaborator failures to 502.
func respondMatchError(w http.ResponseWriter, err error) {
	var (
		thresholdErr *match.InvalidThresholdError
		malformed    *match.MalformedEmbeddingError
		mismatch     *match.DimensionMismatchError
		detectorErr  *detector.Error
	)

	switch {
	case errors.As(err, &thresholdErr), errors.As(err, &malformed):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &mismatch), errors.Is(err, match.ErrDegenerateVector):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, detector.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
	case errors.As(err, &detectorErr):
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, database.ErrPersonNotFound):
		respondError(w, http.StatusNotFound, "person not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// readPhotoFile reads the uploaded "photo" part from a multipart request.
func readPhotoFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, errors.New("failed to parse multipart form")
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		return nil, errors.New("photo file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read photo file")
	}
	return data, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
