package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"punti/internal/core"
	"punti/internal/state"
)

// childView mirrors the persisted layout with tags for both encoders.
type childView struct {
	ID           int64    `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Points       int      `json:"points" yaml:"points"`
	Color        string   `json:"color" yaml:"color"`
	Transactions []txView `json:"transactions" yaml:"transactions"`
}

type txView struct {
	Type      string `json:"type" yaml:"type"`
	Amount    int    `json:"amount" yaml:"amount"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

type documentView struct {
	Children []childView `json:"children" yaml:"children"`
}

func toView(c core.Child) childView {
	v := childView{
		ID:           int64(c.ID),
		Name:         c.Name,
		Points:       c.Points,
		Color:        c.Color,
		Transactions: make([]txView, len(c.Transactions)),
	}
	for i, t := range c.Transactions {
		v.Transactions[i] = txView{Type: string(t.Kind), Amount: t.Amount, Timestamp: t.Timestamp.UnixMilli()}
	}
	return v
}

func toViews(children []core.Child) []childView {
	out := make([]childView, len(children))
	for i, c := range children {
		out[i] = toView(c)
	}
	return out
}

func printChildren(children []core.Child) func(io.Writer) error {
	return func(w io.Writer) error {
		if len(children) == 0 {
			_, err := fmt.Fprintln(w, "No children yet.")
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPOINTS\tCOLOR")
		for _, c := range children {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.Points, c.Color)
		}
		return tw.Flush()
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List children and their points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				children := st.Children()
				return out.Success(toViews(children), printChildren(children))
			})
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a child with zero points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				c, err := st.AddChild(ctx, args[0], color)
				if err != nil {
					return err
				}
				return out.Success(toView(c), func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Added %s (id %d)\n", c.Name, c.ID)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "card color as #RRGGBB (default "+core.DefaultColor+")")
	return cmd
}

// NewTransactionCommand creates give (credit) or take (debit).
func NewTransactionCommand(rootOpts *RootOptions, name string) *cobra.Command {
	kind, short := core.Credit, "Give points to a child"
	if name == "take" {
		kind, short = core.Debit, "Take points from a child, never below zero"
	}

	return &cobra.Command{
		Use:   name + " <id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				c, err := st.ApplyTransaction(ctx, core.ChildID(id), kind, amount)
				if err != nil {
					return err
				}
				return out.Success(toView(c), func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s now has %d points\n", c.Name, c.Points)
					return err
				})
			})
		},
	}
}

// NewDeleteCommand creates the delete command. Without --yes it refuses.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a child permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				c, ok := st.Child(core.ChildID(id))
				if !ok {
					return fmt.Errorf("%w: %d", core.ErrNotFound, id)
				}
				if !yes {
					return fmt.Errorf("refusing to delete %s without --yes: this action is permanent", c.Name)
				}
				if err := st.DeleteChild(ctx, c.ID); err != nil {
					return err
				}
				return out.Success(toView(c), func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted %s\n", c.Name)
					return err
				})
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the deletion")
	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "move <id> up|down",
		Short:     "Move a child one place up or down the list",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dir, err := core.ParseDirection(args[1])
			if err != nil {
				return err
			}
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				if _, ok := st.Child(core.ChildID(id)); !ok {
					return fmt.Errorf("%w: %d", core.ErrNotFound, id)
				}
				if err := st.MoveChild(ctx, core.ChildID(id), dir); err != nil {
					return err
				}
				children := st.Children()
				return out.Success(toViews(children), printChildren(children))
			})
		},
	}
}

// NewExportCommand prints the persisted document in its stored layout, as
// indented JSON unless --format yaml is given.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the persisted document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithState(cmd, rootOpts, func(ctx context.Context, st *state.Store, out *OutputFormatter) error {
				return out.Raw(documentView{Children: toViews(st.Children())})
			})
		},
	}
}
