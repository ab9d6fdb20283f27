package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "headshot",
	Short: "Face-aware headshot thumbnails from a people spreadsheet",
	Long: `Headshot reads a CSV export of a people spreadsheet, downloads each
person's photo, finds the most prominent face and writes a uniform,
subject-centered JPEG thumbnail per person. It can also generate markdown
profile pages from the same sheet and serve crops over HTTP.`,
	SilenceUsage: true,
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
