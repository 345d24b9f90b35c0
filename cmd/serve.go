package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/glefebvre/moviesearch/internal/api"
	"github.com/glefebvre/moviesearch/internal/config"
	"github.com/glefebvre/moviesearch/internal/shutdown"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search state over HTTP",
	Long: `Start the HTTP API. The search text, results, selected movie, favourites
and error log are shared by every client of this process.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		handler := shutdown.New(time.Duration(cfg.API.ShutdownTimeoutSeconds)*time.Second, a.log)
		server := api.NewServer(api.Options{
			Store:          a.store,
			Blobs:          a.blobs,
			Posters:        a.posters,
			Catalog:        a.client,
			Logger:         a.log,
			AllowedOrigins: cfg.API.AllowedOrigins,
			Stopping:       handler.ShutdownChan(),
		})

		// Closing the store cancels pending OMDb calls so handlers waiting
		// on them return while the server drains.
		handler.Register("moviestore", func(ctx context.Context) error {
			return a.store.Close()
		})
		handler.Register("http", server.Shutdown)
		defer a.blobs.Close()

		var runErr error
		go func() {
			err := server.Run(cfg.API.Port)
			if err != nil && !handler.IsShuttingDown() {
				runErr = err
				a.log.Error("HTTP API server stopped", err)
				handler.TriggerShutdown()
			}
		}()

		if err := handler.Wait(); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
	rootCmd.AddCommand(serveCmd)
}
