package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"punti/internal/state"
)

// runWithState loads configuration, opens the store and hands it to fn.
// Storage is closed when fn returns.
func runWithState(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, st *state.Store, out *OutputFormatter) error) (err error) {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig(opts)
	if err != nil {
		return err
	}
	logger := SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.Verbose)

	ctx := cmd.Context()
	st, closeFn, err := OpenState(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", cerr)
		}
	}()

	return fn(ctx, st, newFormatter(opts, cmd.OutOrStdout()))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid child id %q", s)
	}
	return id, nil
}
