package match

import (
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func TestAnnotateColorsByMatchFlag(t *testing.T) {
	img := testImage(200, 200)
	candidates := []Candidate{
		{Index: 0, BBox: []float64{20, 50, 60, 90}},
		{Index: 1, BBox: []float64{120, 50, 160, 90}},
	}
	report := &Report{
		Found:          true,
		BestSimilarity: 0.85,
		BestIndex:      1,
		Threshold:      0.6,
		Matches: []Result{
			{CandidateIndex: 0, Similarity: 0.40, IsMatch: false},
			{CandidateIndex: 1, Similarity: 0.85, IsMatch: true},
		},
	}
	style := DefaultStyle()

	annotated, err := Annotate(img, report, candidates, style)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	// Top edge midpoints carry the box color.
	if got := annotated.RGBAAt(40, 50); got != style.NonMatchColor {
		t.Errorf("non-match box pixel = %v, want %v", got, style.NonMatchColor)
	}
	if got := annotated.RGBAAt(140, 50); got != style.MatchColor {
		t.Errorf("match box pixel = %v, want %v", got, style.MatchColor)
	}
}

func TestAnnotateDoesNotMutateInput(t *testing.T) {
	img := testImage(100, 100)
	before := img.RGBAAt(30, 20)

	candidates := []Candidate{{Index: 0, BBox: []float64{10, 20, 50, 60}}}
	report := &Report{
		BestIndex: 0, BestSimilarity: 0.7, Found: true, Threshold: 0.6,
		Matches: []Result{{CandidateIndex: 0, Similarity: 0.7, IsMatch: true}},
	}

	first, err := Annotate(img, report, candidates, DefaultStyle())
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}
	if img.RGBAAt(30, 20) != before {
		t.Fatal("Annotate() mutated the input image")
	}

	// Idempotent on identical inputs.
	second, err := Annotate(img, report, candidates, DefaultStyle())
	if err != nil {
		t.Fatalf("second Annotate() error: %v", err)
	}
	if first.Bounds() != second.Bounds() {
		t.Fatal("repeated annotation produced different bounds")
	}
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatal("repeated annotation produced different pixels")
		}
	}
}

func TestAnnotateLabelBackground(t *testing.T) {
	img := testImage(300, 300)
	candidates := []Candidate{{Index: 0, BBox: []float64{50, 100, 150, 200}}}
	report := &Report{
		BestIndex: 0, BestSimilarity: 0.9123, Found: true, Threshold: 0.6,
		Matches: []Result{{CandidateIndex: 0, Similarity: 0.9123, IsMatch: true}},
	}
	style := DefaultStyle()

	annotated, err := Annotate(img, report, candidates, style)
	if err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}

	// The label background sits directly above the box's top-left corner.
	if got := annotated.RGBAAt(55, 95); got != style.MatchColor {
		t.Errorf("label background pixel = %v, want %v", got, style.MatchColor)
	}
}

func TestAnnotateCountMismatch(t *testing.T) {
	img := testImage(50, 50)
	candidates := []Candidate{{Index: 0, BBox: []float64{1, 1, 10, 10}}}
	report := &Report{BestIndex: -1, Threshold: 0.6, Matches: []Result{}}

	if _, err := Annotate(img, report, candidates, DefaultStyle()); err == nil {
		t.Error("expected error for report/candidate count mismatch")
	}
}

func TestAnnotateInvalidBBox(t *testing.T) {
	img := testImage(50, 50)
	candidates := []Candidate{{Index: 0, BBox: []float64{1, 1}}}
	report := &Report{
		BestIndex: 0, BestSimilarity: 0.7, Found: true, Threshold: 0.6,
		Matches: []Result{{CandidateIndex: 0, Similarity: 0.7, IsMatch: true}},
	}

	if _, err := Annotate(img, report, candidates, DefaultStyle()); err == nil {
		t.Error("expected error for malformed bounding box")
	}
}

func TestAnnotateBoxClippedToImage(t *testing.T) {
	img := testImage(50, 50)
	candidates := []Candidate{{Index: 0, BBox: []float64{-10, -10, 100, 100}}}
	report := &Report{
		BestIndex: 0, BestSimilarity: 0.3, Found: false, Threshold: 0.6,
		Matches: []Result{{CandidateIndex: 0, Similarity: 0.3, IsMatch: false}},
	}

	// Out-of-bounds boxes must not panic, just clip.
	if _, err := Annotate(img, report, candidates, DefaultStyle()); err != nil {
		t.Fatalf("Annotate() error: %v", err)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"#00c853", color.RGBA{R: 0, G: 200, B: 83, A: 255}, false},
		{"#d50000", color.RGBA{R: 213, G: 0, B: 0, A: 255}, false},
		{"#ffffff", color.RGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"00c853", color.RGBA{}, true},
		{"#xyz", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseHexColor(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseHexColor(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHexColor(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseHexColor(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResizeToFit(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		maxSize    int
		wantW      int
		wantH      int
		wantResize bool
	}{
		{"landscape over limit", 2000, 1000, 1000, 1000, 500, true},
		{"portrait over limit", 1000, 2000, 1000, 500, 1000, true},
		{"within limit", 800, 600, 1000, 800, 600, false},
		{"exactly at limit", 1000, 500, 1000, 1000, 500, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			got := ResizeToFit(src, tt.maxSize)
			bounds := got.Bounds()
			if bounds.Dx() != tt.wantW || bounds.Dy() != tt.wantH {
				t.Errorf("ResizeToFit() = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), tt.wantW, tt.wantH)
			}
			if !tt.wantResize && got != image.Image(src) {
				t.Error("expected original image back when within limit")
			}
		})
	}
}
