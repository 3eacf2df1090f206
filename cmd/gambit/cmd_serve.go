package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/gambit/internal/adapters/http/api"
	service "github.com/okian/gambit/internal/app"
	"github.com/okian/gambit/internal/config"
	"github.com/okian/gambit/pkg/logger"
)

// HTTP server timeouts.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "serve [archive]",
		Short: "Rate an archive and serve the report over HTTP",
		Long: `Rate an archive once and serve the leaderboard, per-competitor ranks
and rating histories as JSON until interrupted. Prometheus metrics are
exposed on /metrics.`,
		Args: archiveArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, &flags)
		},
	}

	f := cmd.Flags()
	addRatingFlags(cmd, &flags)
	f.StringVar(&flags.addr, "addr", config.DefaultAddr, "Listen address")
	f.IntVar(&flags.maxLimit, "max-limit", config.DefaultMaxLeaderboardLimit, "Largest leaderboard page a client may request")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, flags *runFlags) error {
	ctx, cfg, err := setup(cmd, args, flags)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Named("server")
	report, err := newService(cfg, service.WithFullHistory()).RunFile(ctx, cfg.Archive)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	api.NewServer(service.NewView(report), cfg.MaxLeaderboardLimit).Register(ctx, mux)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", api.ErrServe, err)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", ln.Addr().String()),
			logger.Int("ranked", len(report.Leaderboard)),
		)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%w: %w", api.ErrServe, err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return fmt.Errorf("%w: %w", api.ErrServe, err)
	}
	<-errCh
	log.Info(ctx, "server stopped")
	return nil
}
