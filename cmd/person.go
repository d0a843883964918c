package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-check/internal/database"
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the person registry",
}

var personRegisterCmd = &cobra.Command{
	Use:   "register <name> <photo>",
	Short: "Register a person from a reference photo",
	Long: `Register a person from a reference photo. The photo may contain
other people; the largest detected face is taken as the reference.
Registering an existing name replaces the stored embedding.`,
	Args: cobra.ExactArgs(2),
	RunE: runPersonRegister,
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered persons",
	Args:  cobra.NoArgs,
	RunE:  runPersonList,
}

var personDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a registered person",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonDelete,
}

func init() {
	rootCmd.AddCommand(personCmd)
	personCmd.AddCommand(personRegisterCmd)
	personCmd.AddCommand(personListCmd)
	personCmd.AddCommand(personDeleteCmd)

	personListCmd.Flags().Bool("json", false, "Output as JSON")
}

func runPersonRegister(cmd *cobra.Command, args []string) error {
	name, photoPath := args[0], args[1]

	photo, err := os.ReadFile(photoPath)
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	face, err := d.detector.DetectLargestFace(cmd.Context(), photo)
	if err != nil {
		return fmt.Errorf("detecting face in %s: %w", photoPath, err)
	}

	person := &database.StoredPerson{
		Name:      name,
		Embedding: face.Embedding,
		Dim:       d.detector.Dim(),
	}
	if err := d.repo.Save(cmd.Context(), person); err != nil {
		return fmt.Errorf("saving person: %w", err)
	}

	fmt.Printf("Registered %s (uid %s)\n", person.Name, person.UID)
	return nil
}

func runPersonList(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	persons, err := d.repo.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing persons: %w", err)
	}

	if mustGetBool(cmd, "json") {
		return outputJSON(map[string]any{"persons": persons, "count": len(persons)})
	}

	if len(persons) == 0 {
		fmt.Println("No persons registered")
		return nil
	}
	for _, p := range persons {
		fmt.Printf("%s  %s  (registered %s)\n", p.UID, p.Name, p.CreatedAt.Format("2006-01-02"))
	}
	fmt.Printf("Total: %d\n", len(persons))
	return nil
}

func runPersonDelete(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	person, err := d.repo.GetByName(cmd.Context(), args[0])
	if errors.Is(err, database.ErrPersonNotFound) {
		return fmt.Errorf("person %q is not registered", args[0])
	}
	if err != nil {
		return fmt.Errorf("looking up person: %w", err)
	}

	if err := d.repo.Delete(cmd.Context(), person.UID); err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}

	fmt.Printf("Deleted %s\n", person.Name)
	return nil
}
