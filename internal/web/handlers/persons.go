package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-check/internal/database"
)

// PersonsHandler handles person registry endpoints.
type PersonsHandler struct {
	repo     database.PersonWriter
	detector FaceDetector
}

// NewPersonsHandler creates a new persons handler.
func NewPersonsHandler(repo database.PersonWriter, det FaceDetector) *PersonsHandler {
	return &PersonsHandler{repo: repo, detector: det}
}

// Register registers a person from a reference photo. The photo may
// contain bystanders; the largest detected face becomes the reference
// embedding. Registering an existing name replaces the stored embedding.
func (h *PersonsHandler) Register(w http.ResponseWriter, r *http.Request) {
	photo, err := readPhotoFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	face, err := h.detector.DetectLargestFace(r.Context(), photo)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	person := &database.StoredPerson{
		Name:      name,
		Embedding: face.Embedding,
		Dim:       h.detector.Dim(),
	}
	if err := h.repo.Save(r.Context(), person); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, person)
}

// List returns all registered persons.
func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.repo.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if persons == nil {
		persons = []database.StoredPerson{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"persons": persons,
		"count":   len(persons),
	})
}

// Get returns a single person by UID.
func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	person, err := h.repo.Get(r.Context(), uid)
	if err != nil {
		respondMatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, person)
}

// Delete removes a person by UID.
func (h *PersonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	if err := h.repo.Delete(r.Context(), uid); err != nil {
		respondMatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": uid})
}
