package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/countdown/internal/server"
)

// Serve command flags
var (
	servePort      int
	serveHost      string
	serveNoBrowser bool
	serveAdvertise bool
	serveSpecs     []string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default from config, 18181)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address to bind to (default from config, localhost)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Don't auto-open browser")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", false, "Announce the server on the local network over mDNS")
	serveCmd.Flags().StringArrayVarP(&serveSpecs, "spec", "s", nil, "Format spec rendered by the page, repeatable")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI server",
	Long: `Start an HTTP server with a live countdown page and a JSON API.

The API provides:
  GET    /api/timers          list timers
  POST   /api/timers          add a timer {"name": ..., "date": ...}
  DELETE /api/timers/{index}  remove a timer
  GET    /api/render          the rendered table (?spec=dhms&now=...)
  POST   /api/format          format arbitrary origins
  GET    /api/units           the time unit table
  GET    /api/health          server status

The server runs on localhost by default and auto-opens your browser.

Examples:
  countdown serve                    # Start on default port 18181
  countdown serve --port 8080        # Start on custom port
  countdown serve --no-browser       # Don't auto-open browser
  countdown serve --host 0.0.0.0 --advertise`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	specs, err := resolveSpecs(serveSpecs)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}
	host := serveHost
	if host == "" {
		host = cfg.Server.Host
	}

	// Create server configuration
	config := server.Config{
		Port:            port,
		Host:            host,
		Timers:          a.svc,
		Specs:           specs,
		TickMillis:      cfg.TickMillis,
		Advertise:       serveAdvertise || cfg.Server.Advertise,
		Version:         Version,
		AutoOpenBrowser: !serveNoBrowser,
	}

	// Create and start server
	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Handle graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Print startup message
	url := fmt.Sprintf("http://%s", srv.Address())
	OutputLine("Countdown server starting at %s", url)
	VerboseOutput("Store: %s\n", backendLabel())
	if !serveNoBrowser {
		OutputLine("Opening browser...")
	}
	OutputLine("Press Ctrl+C to stop")

	// Wait for shutdown signal or error
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
		OutputLine("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	OutputLine("Server stopped")
	return nil
}
