package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DB      string
	Config  string
	Format  string // "text" | "json" | "yaml"
	Verbose bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the punti CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "punti",
		Short: "punti - a household points tracker",
		Long: `Track points for children with a tap-friendly web pad or from the shell.

Every command works on the same persisted document, so changes made here
show up in the web UI after a reload.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "sqlite database path (overrides SQLITE_DB_PATH)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "TOML config file (default $"+ConfigEnv+")")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewTransactionCommand(opts, "give"))
	cmd.AddCommand(NewTransactionCommand(opts, "take"))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
