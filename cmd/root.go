package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-check",
	Short: "A CLI tool for checking who appears in group photos",
	Long: `Face Check registers people from reference photos and determines
whether they appear in group photos. Face detection and embedding is
delegated to an external detection service; matching runs on cosine
similarity between face embeddings.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
