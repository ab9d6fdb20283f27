package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/headshot/internal/config"
	"github.com/kozaktomas/headshot/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the headshot web server.
The server crops a single photo on demand:

  GET /api/v1/crop?url=<photo url>   JPEG thumbnail
  GET /api/v1/health                 liveness check`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on (env WEB_PORT)")
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to (env WEB_HOST)")
	addStageFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideInt(cmd, "port", &cfg.Web.Port)
	overrideString(cmd, "host", &cfg.Web.Host)
	applyStageFlags(cmd, cfg)

	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}

	server := web.NewServer(cfg, newFetcher(cfg, !cfg.Web.AllowPrivateTargets), locator)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting headshot on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
