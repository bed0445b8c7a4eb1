package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	apphttp "punti/internal/http"
	"punti/internal/log"
	"punti/internal/metrics"
	"punti/internal/view"
)

// NewServeCommand creates the serve command running the web UI.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Long: `Serve the points tracker on BIND_ADDR:PORT (127.0.0.1:8081 by default).

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(opts)
	if err != nil {
		return err
	}
	logger := SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose).WithComponent(log.ComponentApp)

	ctx, stop := ShutdownContext(cmd.Context())
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st, closeFn, err := OpenState(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			logger.Error("Failed to close storage", log.FieldError, cerr)
		}
	}()

	ctrl := view.New(st,
		view.WithMaxDigits(cfg.MaxDigits),
		view.WithDefaultColor(cfg.DefaultColor),
		view.WithLogger(logger),
	)
	srv := apphttp.NewServer(cfg.Addr(), ctrl, st,
		apphttp.WithLogger(logger),
		apphttp.WithMetrics(m, reg),
	)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting punti server",
			"addr", cfg.Addr(), "backend", cfg.DataBackend, "children", len(st.Children()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
