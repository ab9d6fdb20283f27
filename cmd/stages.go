package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/headshot/internal/config"
	"github.com/kozaktomas/headshot/internal/face"
	"github.com/kozaktomas/headshot/internal/fetch"
)

// addStageFlags registers the flags shared by commands that fetch and detect.
func addStageFlags(cmd *cobra.Command) {
	cmd.Flags().String("cascade", "", "Path to a pigo cascade replacing the bundled facefinder (env HEADSHOT_CASCADE)")
	cmd.Flags().Bool("insecure-tls", true, "Skip TLS certificate verification for photo hosts (env HEADSHOT_INSECURE_TLS)")
	cmd.Flags().Int("max-dimension", 0, "Largest side of an output image in pixels (env HEADSHOT_MAX_DIMENSION)")
	cmd.Flags().Int("quality", 0, "JPEG quality 1-100 (env HEADSHOT_JPEG_QUALITY)")
}

func applyStageFlags(cmd *cobra.Command, cfg *config.Config) {
	overrideString(cmd, "cascade", &cfg.Detector.CascadePath)
	overrideBool(cmd, "insecure-tls", &cfg.Fetch.InsecureTLS)
	overrideInt(cmd, "max-dimension", &cfg.Output.MaxDimension)
	overrideInt(cmd, "quality", &cfg.Output.JPEGQuality)
}

// newFetcher builds the photo fetcher. publicOnly refuses connections to
// loopback, private and link-local addresses.
func newFetcher(cfg *config.Config, publicOnly bool) *fetch.Fetcher {
	return fetch.New(fetch.Options{
		UserAgent:   cfg.Fetch.UserAgent,
		Timeout:     cfg.Fetch.Timeout,
		InsecureTLS: cfg.Fetch.InsecureTLS,
		MaxBytes:    cfg.Fetch.MaxBytes,
		PublicOnly:  publicOnly,
	})
}

func newLocator(cfg *config.Config) (*face.Locator, error) {
	var detector *face.PigoDetector
	var err error
	if cfg.Detector.CascadePath != "" {
		detector, err = face.LoadPigoDetector(cfg.Detector.CascadePath, face.DefaultParams())
	} else {
		detector, err = face.NewDefaultPigoDetector(face.DefaultParams())
	}
	if err != nil {
		return nil, fmt.Errorf("loading face detector: %w", err)
	}
	return face.NewLocator(detector), nil
}
