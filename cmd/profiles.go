package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/headshot/internal/config"
	"github.com/kozaktomas/headshot/internal/profile"
	"github.com/kozaktomas/headshot/internal/roster"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Generate markdown profile pages from the roster",
	Long: `Write one markdown page with YAML front matter per named roster row.
The page links to the thumbnail produced by the crop command.

Examples:
  headshot profiles --input people.csv
  headshot profiles --input people.csv --withdrawn "Jane Doe,John Roe"`,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.Flags().String("input", "", "Roster CSV file (env HEADSHOT_INPUT)")
	profilesCmd.Flags().String("output", "", "Directory for profile pages (env HEADSHOT_PROFILES_DIR)")
	profilesCmd.Flags().StringSlice("withdrawn", nil, "Names to mark as withdrawn (env HEADSHOT_WITHDRAWN)")
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideString(cmd, "input", &cfg.Input.Path)
	overrideString(cmd, "output", &cfg.Output.ProfilesDir)
	if cmd.Flags().Changed("withdrawn") {
		cfg.Input.Withdrawn = mustGetStringSlice(cmd, "withdrawn")
	}

	if cfg.Input.Path == "" {
		return errors.New("roster CSV is required (--input or HEADSHOT_INPUT)")
	}

	rows, err := roster.Load(cfg.Input.Path)
	if err != nil {
		return err
	}

	generated, err := profile.Generate(cfg.Output.ProfilesDir, rows, cfg.Input.IsWithdrawn)
	out := cmd.OutOrStdout()
	for _, g := range generated {
		status := ""
		if g.Withdrawn {
			status = " (WITHDRAWN)"
		}
		fmt.Fprintf(out, "Created: %s%s\n", g.Path, status)
	}
	if err != nil {
		return fmt.Errorf("generating profiles: %w", err)
	}

	fmt.Fprintf(out, "\nGenerated %d profiles in %s\n", len(generated), cfg.Output.ProfilesDir)
	return nil
}
