package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-check/internal/database"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <photo>",
	Short: "Identify every face in a photo against the registry",
	Long: `Identify every face in a photo by pairing it with the most
similar registered person. The registry is loaded into an in-memory
HNSW index for the lookup.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("threshold", 0, "Match threshold (defaults to configured value)")
	identifyCmd.Flags().Bool("json", false, "Output as JSON")
}

// identifiedFace is one detected face paired with its closest person.
type identifiedFace struct {
	Index      int       `json:"index"`
	BBox       []float64 `json:"bbox"`
	Name       string    `json:"name,omitempty"`
	Similarity float64   `json:"similarity,omitempty"`
	IsMatch    bool      `json:"is_match"`
}

func runIdentify(cmd *cobra.Command, args []string) error {
	photoPath := args[0]

	photo, err := os.ReadFile(photoPath)
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	threshold := mustGetFloat64(cmd, "threshold")
	if !cmd.Flags().Changed("threshold") {
		threshold = d.cfg.Matching.Threshold
	}

	persons, err := d.repo.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing persons: %w", err)
	}

	index := database.NewPersonIndex()
	index.Build(persons)

	candidates, err := d.detector.DetectFaces(cmd.Context(), photo)
	if err != nil {
		return fmt.Errorf("detecting faces: %w", err)
	}

	faces := make([]identifiedFace, 0, len(candidates))
	for _, c := range candidates {
		face := identifiedFace{Index: c.Index, BBox: c.BBox}
		if index.Len() > 0 {
			matches, err := index.Search(c.Embedding, 1)
			if err != nil {
				return fmt.Errorf("searching index: %w", err)
			}
			if len(matches) > 0 {
				face.Name = matches[0].Person.Name
				face.Similarity = matches[0].Similarity
				face.IsMatch = matches[0].Similarity >= threshold
			}
		}
		faces = append(faces, face)
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(map[string]any{
			"photo":       photoPath,
			"threshold":   threshold,
			"total_faces": len(faces),
			"faces":       faces,
		})
	}

	if len(faces) == 0 {
		fmt.Println("No faces detected")
		return nil
	}
	for _, face := range faces {
		switch {
		case face.Name == "":
			fmt.Printf("Face %d: no registered persons\n", face.Index+1)
		case face.IsMatch:
			fmt.Printf("Face %d: %s (similarity %.4f)\n", face.Index+1, face.Name, face.Similarity)
		default:
			fmt.Printf("Face %d: unknown (closest %s at %.4f)\n", face.Index+1, face.Name, face.Similarity)
		}
	}
	return nil
}
