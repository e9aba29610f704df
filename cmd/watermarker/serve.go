package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/wb-go/wbf/zlog"

	batchapi "github.com/aliskhannn/watermarker/internal/api/handlers/batch"
	"github.com/aliskhannn/watermarker/internal/api/router"
	"github.com/aliskhannn/watermarker/internal/api/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept batch requests over HTTP",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}

	addBatchFlags(cmd.Flags())
	cmd.Flags().StringP("watermark", "w", "", "watermark image")
	cmd.Flags().String("addr", ":8080", "HTTP listen address")

	return cmd
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return configurationFailure(err)
	}
	defer a.Close()

	h := batchapi.NewHandler(a.service, nil)
	if a.repo != nil {
		h = batchapi.NewHandler(a.service, a.repo)
	}

	s := server.New(cfg.Server.HTTPPort, router.Setup(h))

	serveErr := make(chan error, 1)
	go func() {
		zlog.Logger.Info().Str("addr", cfg.Server.HTTPPort).Msg("starting server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Block until context is canceled (SIGINT/SIGTERM) or the server fails.
	select {
	case <-ctx.Done():
		zlog.Logger.Info().Msg("context done")
	case err, ok := <-serveErr:
		if ok {
			return configurationFailure(err)
		}
	}

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	return nil
}
