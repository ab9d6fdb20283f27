package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/headshot/internal/config"
	"github.com/kozaktomas/headshot/internal/output"
	"github.com/kozaktomas/headshot/internal/pipeline"
	"github.com/kozaktomas/headshot/internal/roster"
)

var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Create a face-centered thumbnail for everyone in the roster",
	Long: `Download every photo listed in the roster CSV, locate the most prominent
face and save a head-and-shoulders crop as <output>/<slug>.jpg.

Records without a photo URL are skipped. A failing record is reported and
the batch continues; the command only fails when it cannot start.

Examples:
  headshot crop --input people.csv
  headshot crop --input people.csv --output public/photos --quiet`,
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)

	cropCmd.Flags().String("input", "", "Roster CSV file (env HEADSHOT_INPUT)")
	cropCmd.Flags().String("output", "", "Directory for thumbnails (env HEADSHOT_OUTPUT_DIR)")
	cropCmd.Flags().Bool("quiet", false, "Show a progress bar instead of per-record lines")
	addStageFlags(cropCmd)
}

func runCrop(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideString(cmd, "input", &cfg.Input.Path)
	overrideString(cmd, "output", &cfg.Output.PhotosDir)
	applyStageFlags(cmd, cfg)
	quiet := mustGetBool(cmd, "quiet")

	if cfg.Input.Path == "" {
		return errors.New("roster CSV is required (--input or HEADSHOT_INPUT)")
	}

	rows, err := roster.Load(cfg.Input.Path)
	if err != nil {
		return err
	}
	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}

	records := roster.Records(rows)
	out := cmd.OutOrStdout()

	opts := pipeline.Options{MaxDimension: cfg.Output.MaxDimension}
	var bar *progressbar.ProgressBar
	if quiet {
		bar = newCropProgressBar(countNamed(records))
		opts.OnProgress = func(e pipeline.Event) {
			switch e.Phase {
			case "saved", "skipped", "failed":
				bar.Add(1)
			}
		}
	} else {
		opts.OnProgress = func(e pipeline.Event) { printEvent(out, e) }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writer := output.NewWriter(cfg.Output.PhotosDir, cfg.Output.JPEGQuality)
	p := pipeline.New(newFetcher(cfg, false), locator, writer, opts)

	fmt.Fprintf(out, "Processing %d records from %s into %s\n", len(records), cfg.Input.Path, writer.Dir())
	summary := p.Run(ctx, records)
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(out)
	}

	printSummary(out, summary)
	return nil
}

func countNamed(records []pipeline.Record) int {
	n := 0
	for _, r := range records {
		if strings.TrimSpace(r.Identity) != "" {
			n++
		}
	}
	return n
}

func newCropProgressBar(count int) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Cropping photos"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
}

func printEvent(out io.Writer, e pipeline.Event) {
	if e.Phase == "processing" {
		fmt.Fprintf(out, "[%d/%d] %s\n", e.Current, e.Total, e.Message)
		return
	}
	fmt.Fprintf(out, "  %s\n", e.Message)
}

func printSummary(out io.Writer, summary *pipeline.Summary) {
	fmt.Fprintf(out, "\nCompleted: %d saved, %d skipped, %d failed\n", summary.Saved, summary.Skipped, summary.Failed)
	if summary.Failed == 0 {
		return
	}
	fmt.Fprintln(out, "Failures:")
	for _, res := range summary.Results {
		if res.Outcome == pipeline.OutcomeFailed {
			fmt.Fprintf(out, "  %s: %v\n", res.Record.Identity, res.Err)
		}
	}
}
