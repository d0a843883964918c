package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/png"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-check/internal/database"
	"github.com/kozaktomas/face-check/internal/match"
)

var checkCmd = &cobra.Command{
	Use:   "check <person> <photo...>",
	Short: "Check whether a person appears in group photos",
	Long: `Check whether a registered person appears in one or more group
photos. Every face in each photo is compared against the person's
reference embedding; the photo counts as a match when the best
similarity reaches the threshold.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Float64("threshold", 0, "Match threshold (defaults to configured value)")
	checkCmd.Flags().Bool("json", false, "Output as JSON")
	checkCmd.Flags().String("annotate-dir", "", "Write annotated copies of the photos to this directory")
}

// photoCheckResult is the outcome of checking one photo.
type photoCheckResult struct {
	Photo          string         `json:"photo"`
	Found          bool           `json:"found"`
	TotalFaces     int            `json:"total_faces"`
	BestSimilarity *float64       `json:"best_similarity,omitempty"`
	BestIndex      *int           `json:"best_index,omitempty"`
	Matches        []match.Result `json:"matches"`
	Error          string         `json:"error,omitempty"`
}

// checkOutput is the full JSON output of the check command.
type checkOutput struct {
	Person    string             `json:"person"`
	Threshold float64            `json:"threshold"`
	Photos    []photoCheckResult `json:"photos"`
}

// checkPhoto runs the detect-and-match pipeline for one photo file.
func checkPhoto(
	ctx context.Context, d *deps, person *database.StoredPerson,
	photoPath string, threshold float64, annotateDir string, style match.Style,
) photoCheckResult {
	result := photoCheckResult{Photo: photoPath}

	photo, err := os.ReadFile(photoPath)
	if err != nil {
		result.Error = fmt.Sprintf("reading photo: %v", err)
		return result
	}

	candidates, err := d.detector.DetectFaces(ctx, photo)
	if err != nil {
		result.Error = fmt.Sprintf("detecting faces: %v", err)
		return result
	}

	report, err := match.Resolve(match.Vector(person.Embedding), candidates, threshold)
	if err != nil {
		result.Error = fmt.Sprintf("matching: %v", err)
		return result
	}

	result.Found = report.Found
	result.TotalFaces = len(candidates)
	result.Matches = report.Matches
	if report.HasBest() {
		result.BestSimilarity = &report.BestSimilarity
		result.BestIndex = &report.BestIndex
	}

	if annotateDir != "" {
		if err := writeAnnotated(photo, report, candidates, style, annotateDir, photoPath); err != nil {
			result.Error = fmt.Sprintf("annotating: %v", err)
		}
	}

	return result
}

// writeAnnotated draws the match report onto the photo and writes a JPEG
// copy into dir.
func writeAnnotated(
	photo []byte, report *match.Report, candidates []match.Candidate,
	style match.Style, dir, photoPath string,
) error {
	img, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	annotated, err := match.Annotate(img, report, candidates, style)
	if err != nil {
		return err
	}

	name := filepath.Base(photoPath)
	ext := filepath.Ext(name)
	outPath := filepath.Join(dir, name[:len(name)-len(ext)]+"_annotated.jpg")

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, annotated, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("encoding annotated image: %w", err)
	}
	return nil
}

func printCheckResult(result photoCheckResult) {
	if result.Error != "" {
		fmt.Printf("%s: ERROR: %s\n", result.Photo, result.Error)
		return
	}
	if result.Found {
		fmt.Printf("%s: FOUND (similarity %.4f, face %d of %d)\n",
			result.Photo, *result.BestSimilarity, *result.BestIndex+1, result.TotalFaces)
		return
	}
	if result.BestSimilarity != nil {
		fmt.Printf("%s: not found (best similarity %.4f, %d faces)\n",
			result.Photo, *result.BestSimilarity, result.TotalFaces)
		return
	}
	fmt.Printf("%s: not found (no faces detected)\n", result.Photo)
}

func runCheck(cmd *cobra.Command, args []string) error {
	personName, photoPaths := args[0], args[1:]

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	threshold := mustGetFloat64(cmd, "threshold")
	if !cmd.Flags().Changed("threshold") {
		threshold = d.cfg.Matching.Threshold
	}

	annotateDir := mustGetString(cmd, "annotate-dir")
	style, err := d.cfg.Matching.Style()
	if err != nil {
		return err
	}
	if annotateDir != "" {
		if err := os.MkdirAll(annotateDir, 0750); err != nil {
			return fmt.Errorf("creating annotate directory: %w", err)
		}
	}

	person, err := d.repo.GetByName(cmd.Context(), personName)
	if errors.Is(err, database.ErrPersonNotFound) {
		return fmt.Errorf("person %q is not registered", personName)
	}
	if err != nil {
		return fmt.Errorf("looking up person: %w", err)
	}

	asJSON := mustGetBool(cmd, "json")

	var bar *progressbar.ProgressBar
	if len(photoPaths) > 1 && !asJSON {
		bar = progressbar.NewOptions(len(photoPaths),
			progressbar.OptionSetDescription("Checking photos"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("photos"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	results := make([]photoCheckResult, 0, len(photoPaths))
	for _, photoPath := range photoPaths {
		results = append(results, checkPhoto(cmd.Context(), d, person, photoPath, threshold, annotateDir, style))
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		fmt.Println()
	}

	if asJSON {
		return outputJSON(checkOutput{Person: person.Name, Threshold: threshold, Photos: results})
	}

	found := 0
	for _, result := range results {
		printCheckResult(result)
		if result.Found {
			found++
		}
	}
	if len(results) > 1 {
		fmt.Printf("\n%s found in %d of %d photos\n", person.Name, found, len(results))
	}
	return nil
}
