package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/hoanghai1803/cyberdigest/internal/api"
	"github.com/hoanghai1803/cyberdigest/internal/config"
	"github.com/hoanghai1803/cyberdigest/internal/metrics"
	"github.com/hoanghai1803/cyberdigest/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP and run them on a schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			m := metrics.New()
			a, err := newApp(cfg, m)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if cfg.Server.Schedule != "" {
				sched := scheduler.New(ctx, a.builder)
				if err := sched.Start(cfg.Server.Schedule); err != nil {
					return err
				}
				defer sched.Stop()
			}

			// Localhost only unless an address is given explicitly.
			addr := listen
			if addr == "" {
				addr = fmt.Sprintf("localhost:%d", cfg.Server.Port)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			srv := &http.Server{
				Handler: api.NewRouter(api.Deps{
					Runner:    a.builder,
					ReportDir: a.builder.LogDir(),
					Metrics:   m.Handler(),
				}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			return serve(ctx, srv, ln)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default localhost:<server.port>)")
	return cmd
}

// serve runs srv on ln until ctx is done, then shuts it down gracefully.
// Request contexts derive from ctx, so an in-flight report run is cancelled
// along with the server.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
