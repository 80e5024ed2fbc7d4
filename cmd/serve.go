package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/c-tram/cycle-splits/internal/server"
)

var (
	servePort    string
	serveOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve split views over HTTP",
	Long: `Start a JSON/CSV HTTP API over the same engine:

  GET /health
  GET /api/views
  GET /api/search?q=<name>
  GET /api/splits?team=&player=&season=&view=&kind=&sort=&dir=&filter=
  GET /api/splits.csv?...same parameters
  GET /api/combine?team=&view=&keys=a,b&label=
  GET /api/baseline/{season}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from SERVER_PORT)")
	serveCmd.Flags().StringVar(&serveOrigins, "origins", "*", "comma-separated CORS allowed origins")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	port := cfg.ServerPort
	if servePort != "" {
		port = servePort
	}

	srv := server.New(d.client, d.cache, d.baselines, cfg.Season, log)
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Routes(splitKeys(serveOrigins)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Int("season", cfg.Season).Msg("split server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
