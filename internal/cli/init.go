// Package cli provides the punti command tree and the initialization it
// shares between the server and the one-shot commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"punti/internal/backend"
	"punti/internal/config"
	"punti/internal/log"
	"punti/internal/metrics"
	"punti/internal/state"
	"punti/internal/storage"
)

// ConfigEnv names the environment variable consulted when --config is unset.
const ConfigEnv = "PUNTI_CONFIG"

// SetupLogger initializes structured logging at the configured level, or
// debug when verbose is set. It also becomes the default logger.
func SetupLogger(w io.Writer, level string, verbose bool) *log.Logger {
	lvl := log.ParseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentCLI,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the optional TOML file and the environment,
// applies the --db override, and validates the result.
func LoadAndValidateConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.DB != "" {
		cfg.DataBackend = "sqlite"
		cfg.SQLiteDBPath = opts.DB
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// OpenKV opens the configured key-value backend. The returned close func is
// never nil.
func OpenKV(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.KV, func() error, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	return res.KV, res.Cleanup, nil
}

// OpenState opens storage and loads the persisted children into a store.
func OpenState(ctx context.Context, cfg *config.Config, logger *log.Logger, m *metrics.Metrics) (*state.Store, func() error, error) {
	kv, closeFn, err := OpenKV(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	st := state.New(kv,
		state.WithKey(cfg.StorageKey),
		state.WithHistoryLimit(cfg.HistoryLimit),
		state.WithLogger(logger),
		state.WithMetrics(m),
	)
	st.Load(ctx)
	return st, closeFn, nil
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
