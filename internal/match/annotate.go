package match

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style controls how match outcomes are rendered onto a group photo. The
// box color is a pure function of each candidate's IsMatch flag, never of
// its rank.
type Style struct {
	MatchColor     color.RGBA
	NonMatchColor  color.RGBA
	LineWidth      int
	LabelPrecision int
}

// DefaultStyle returns the documented defaults: green boxes for matches,
// red for non-matches, 3px lines, 4 decimal places in labels.
func DefaultStyle() Style {
	return Style{
		MatchColor:     color.RGBA{R: 0, G: 200, B: 83, A: 255},
		NonMatchColor:  color.RGBA{R: 213, G: 0, B: 0, A: 255},
		LineWidth:      3,
		LabelPrecision: 4,
	}
}

// ParseHexColor parses a "#rrggbb" color string into an opaque RGBA.
func ParseHexColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Annotate renders a match report onto a copy of the group photo. Every
// candidate's bounding box is drawn in the match or non-match color and
// labeled with its 1-based display index and similarity score. The input
// image is never mutated; writing the result anywhere is the caller's job.
func Annotate(img image.Image, report *Report, candidates []Candidate, style Style) (*image.RGBA, error) {
	if report == nil {
		return nil, fmt.Errorf("nil match report")
	}
	if len(report.Matches) != len(candidates) {
		return nil, fmt.Errorf("report has %d results for %d candidates", len(report.Matches), len(candidates))
	}
	if style.LineWidth <= 0 {
		style.LineWidth = 1
	}

	byIndex := make(map[int]Result, len(report.Matches))
	for _, res := range report.Matches {
		byIndex[res.CandidateIndex] = res
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	for i := range candidates {
		c := &candidates[i]
		res, ok := byIndex[c.Index]
		if !ok {
			return nil, fmt.Errorf("no result for candidate %d", c.Index)
		}
		if len(c.BBox) != 4 {
			return nil, fmt.Errorf("candidate %d: bounding box needs 4 coordinates, got %d", c.Index, len(c.BBox))
		}

		boxColor := style.NonMatchColor
		if res.IsMatch {
			boxColor = style.MatchColor
		}

		x1, y1 := int(c.BBox[0]), int(c.BBox[1])
		x2, y2 := int(c.BBox[2]), int(c.BBox[3])
		drawRect(dst, x1, y1, x2, y2, style.LineWidth, boxColor)

		label := fmt.Sprintf("Face %d (%.*f)", c.Index+1, style.LabelPrecision, res.Similarity)
		drawLabel(dst, x1, y1, label, boxColor)
	}

	return dst, nil
}

// ResizeToFit scales an image down so neither dimension exceeds maxSize,
// keeping the aspect ratio. Images already within bounds come back as is.
func ResizeToFit(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var newWidth, newHeight int
	if width > height {
		if width <= maxSize {
			return img
		}
		newWidth = maxSize
		newHeight = height * maxSize / width
	} else {
		if height <= maxSize {
			return img
		}
		newHeight = maxSize
		newWidth = width * maxSize / height
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// drawHLine draws a horizontal line clipped to the image bounds.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= bounds.Min.X && x < bounds.Max.X {
			dst.Set(x, y, c)
		}
	}
}

// drawVLine draws a vertical line clipped to the image bounds.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= bounds.Min.Y && y < bounds.Max.Y {
			dst.Set(x, y, c)
		}
	}
}

// drawRect draws a rectangle outline with the given line width.
func drawRect(dst *image.RGBA, x1, y1, x2, y2, lineWidth int, c color.RGBA) {
	for w := range lineWidth {
		drawHLine(dst, x1, x2, y1+w, c)
		drawHLine(dst, x1, x2, y2-w, c)
		drawVLine(dst, y1, y2, x1+w, c)
		drawVLine(dst, y1, y2, x2-w, c)
	}
}

const labelPad = 3

// drawLabel renders white text on a filled background just above (x, y),
// or below the top edge when the box touches it.
func drawLabel(dst *image.RGBA, x, y int, text string, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	top := y - height - 2*labelPad
	if top < dst.Bounds().Min.Y {
		top = y
	}

	bgRect := image.Rect(x, top, x+width+2*labelPad, top+height+2*labelPad)
	draw.Draw(dst, bgRect.Intersect(dst.Bounds()), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.P(x+labelPad, top+labelPad+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
