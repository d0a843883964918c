// Package detector talks to the external face detection and embedding
// service over HTTP. The service is an opaque collaborator: given an image
// it returns zero or more (bounding box, embedding) pairs. Detection
// failures are kept distinct from the legitimate zero-faces outcome.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kozaktomas/face-check/internal/match"
)

const defaultDetectorURL = "http://localhost:8000"

// ErrNoFace is returned by DetectLargestFace when the image contains no
// detectable face. It is not a collaborator failure.
var ErrNoFace = errors.New("no face detected in image")

// Error marks a failure of the detection collaborator itself, as opposed
// to a successful run that found no faces. It is propagated unchanged.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("face detector failure: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client calls the face detection service.
type Client struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewClient creates a detector client. dim is the embedding dimensionality
// the service is expected to produce; zero falls back to match.DefaultDim.
func NewClient(baseURL string, dim int) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if dim <= 0 {
		dim = match.DefaultDim
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{},
	}
}

// Dim returns the embedding dimensionality the client validates against.
func (c *Client) Dim() int {
	return c.dim
}

// faceDetection mirrors one face entry in the service response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse mirrors the /embed/faces response body.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// postMultipartImage posts the image as a multipart form to the given
// endpoint. The part carries an explicit Content-Type from magic byte
// detection so the service can reject unsupported formats early.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", detectMIMEType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Err: fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))}
	}

	return body, nil
}

// DetectFaces detects all faces in the image and returns them as match
// candidates, index-assigned in the order the service produced them. An
// image with no faces yields an empty slice and nil error.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]match.Candidate, error) {
	body, err := c.postMultipartImage(ctx, "/embed/faces", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, &Error{Err: fmt.Errorf("failed to parse response: %w", err)}
	}

	candidates := make([]match.Candidate, 0, len(faceResp.Faces))
	for i, face := range faceResp.Faces {
		if len(face.Embedding) != c.dim {
			return nil, &match.DimensionMismatchError{Want: c.dim, Got: len(face.Embedding)}
		}
		if len(face.BBox) != 4 {
			return nil, &Error{Err: fmt.Errorf("face %d: bounding box has %d coordinates", i, len(face.BBox))}
		}
		candidates = append(candidates, match.Candidate{
			Index:     i,
			BBox:      face.BBox,
			Embedding: match.Vector(face.Embedding),
		})
	}

	return candidates, nil
}

// DetectLargestFace detects faces and returns the one with the largest
// bounding box area. Reference photos may contain bystanders; the subject
// is assumed to be the most prominent face.
func (c *Client) DetectLargestFace(ctx context.Context, imageData []byte) (match.Candidate, error) {
	candidates, err := c.DetectFaces(ctx, imageData)
	if err != nil {
		return match.Candidate{}, err
	}
	if len(candidates) == 0 {
		return match.Candidate{}, ErrNoFace
	}

	best := 0
	bestArea := bboxArea(candidates[0].BBox)
	for i := 1; i < len(candidates); i++ {
		if area := bboxArea(candidates[i].BBox); area > bestArea {
			bestArea = area
			best = i
		}
	}
	return candidates[best], nil
}

func bboxArea(bbox []float64) float64 {
	if len(bbox) != 4 {
		return 0
	}
	return (bbox[2] - bbox[0]) * (bbox[3] - bbox[1])
}

// detectMIMEType detects the image MIME type from magic bytes.
func detectMIMEType(data []byte) string {
	if len(data) < 12 {
		return "application/octet-stream"
	}
	// JPEG: FF D8 FF
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	// PNG: 89 50 4E 47
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	// GIF: 47 49 46 38
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x38 {
		return "image/gif"
	}
	// WEBP: RIFF....WEBP
	if data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "application/octet-stream"
}
