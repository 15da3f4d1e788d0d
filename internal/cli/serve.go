package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrennerSpear/clarity/internal/server"
)

// serveCommand creates the serve command exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram pipeline over HTTP",
		Long: `Start an HTTP server exposing the pipeline.

Endpoints:
  POST   /api/diagram    run the pipeline on an inline source document
  GET    /api/runs       list stored runs
  GET    /api/runs/{id}  fetch one stored run with its layout
  DELETE /api/runs/{id}  delete a stored run
  GET    /healthz        liveness probe

The cache and run store backends come from clarity.toml, so a shared
deployment can point at Redis and MongoDB while a laptop uses local
files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, noStore)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "disable the run store endpoints")

	return cmd
}

// runServe starts the server and blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, noCache, noStore bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(runner, nil, c.Logger)
	if !noStore {
		s, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close(context.Background())
		srv = server.New(runner, s, c.Logger)
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
