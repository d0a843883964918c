package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-check/internal/detector"
	"github.com/kozaktomas/face-check/internal/match"
)

// stubDetector is a FaceDetector returning canned results.
type stubDetector struct {
	faces []match.Candidate
	err   error
	dim   int
}

func (s *stubDetector) DetectFaces(ctx context.Context, imageData []byte) ([]match.Candidate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.faces, nil
}

func (s *stubDetector) DetectLargestFace(ctx context.Context, imageData []byte) (match.Candidate, error) {
	if s.err != nil {
		return match.Candidate{}, s.err
	}
	if len(s.faces) == 0 {
		return match.Candidate{}, detector.ErrNoFace
	}
	best := s.faces[0]
	for _, c := range s.faces[1:] {
		if area(c.BBox) > area(best.BBox) {
			best = c
		}
	}
	return best, nil
}

func area(bbox []float64) float64 {
	if len(bbox) != 4 {
		return 0
	}
	return (bbox[2] - bbox[0]) * (bbox[3] - bbox[1])
}

func (s *stubDetector) Dim() int {
	if s.dim > 0 {
		return s.dim
	}
	return 4
}

// testJPEG encodes a small gray JPEG for upload tests.
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// multipartRequest builds a multipart POST with form fields and a photo part.
func multipartRequest(t *testing.T, path string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create photo part: %v", err)
		}
		if _, err := part.Write(photo); err != nil {
			t.Fatalf("failed to write photo part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}
