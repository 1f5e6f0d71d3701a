package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

// Run executes the command line given by args.
func Run(ctx context.Context, args []string, opts Options) error {
	a := newApp(opts)
	defer func() {
		if err := a.close(); err != nil && a.logger != nil {
			a.logger.Warn("Failed to release backend", "error", err)
		}
	}()

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetIn(a.opts.In)
	root.SetOut(a.opts.Out)
	root.SetErr(a.opts.Err)
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	var user, dataDir, backendName string

	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Personal expense tracker",
		Long: `fintrack records expenses by category for one user at a time.
Run without a command to use the interactive menu.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			var o Overrides
			flags := cmd.Flags()
			if flags.Changed("user") {
				o.User = &user
			}
			if flags.Changed("data-dir") {
				o.DataDir = &dataDir
			}
			if flags.Changed("backend") {
				o.Backend = &backendName
			}
			ctx, err := a.start(cmd.Context(), o)
			cmd.SetContext(ctx)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.menu(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVarP(&user, "user", "u", "", "username (default $FINTRACK_USER, otherwise prompted)")
	pf.StringVar(&dataDir, "data-dir", "", "directory for ledger files (default $DATA_DIR or .)")
	pf.StringVar(&backendName, "backend", "", "storage backend: file, sqlite or memory (default $DATA_BACKEND or file)")

	root.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newTotalCommand(a),
		newByCategoryCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newReportCommand(a),
	)
	return root
}

func newAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <amount> [description...]",
		Short: "Add an expense",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[1])
			if err != nil {
				return err
			}
			if err := a.service.AddExpense(cmd.Context(), category, amount, strings.Join(args[2:], " ")); err != nil {
				return err
			}
			a.render.Message("Expense added.")
			return nil
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"view"},
		Short:   "List expenses by category",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.render.Expenses(a.service.ListExpenses())
		},
	}
}

func newTotalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Show the total of all expenses",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.render.Total(a.service.TotalExpenses())
		},
	}
}

func newByCategoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "by-category",
		Short: "Show the total of each category",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			a.render.CategoryTotals(a.service.TotalsByCategory())
		},
	}
}

func newEditCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <category> <n> <amount> [description...]",
		Short: "Replace expense number n of a category",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseRecordNumber(args[1])
			if err != nil {
				return err
			}
			amount, err := core.ParseAmount(args[2])
			if err != nil {
				return err
			}
			if err := a.service.EditExpense(cmd.Context(), args[0], index, amount, strings.Join(args[3:], " ")); err != nil {
				return err
			}
			a.render.Message("Expense updated.")
			return nil
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category> <n>",
		Short: "Delete expense number n of a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseRecordNumber(args[1])
			if err != nil {
				return err
			}
			if err := a.service.DeleteExpense(cmd.Context(), args[0], index); err != nil {
				return err
			}
			a.render.Message("Expense deleted.")
			return nil
		},
	}
}

func newReportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "report [period]",
		Short:     "Print a report (daily, weekly, monthly or yearly; default monthly)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: periodNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := core.Monthly
			if len(args) == 1 {
				p, err := core.ParsePeriod(args[0])
				if err != nil {
					return fmt.Errorf("%w: %q", err, args[0])
				}
				period = p
			}
			rep, err := a.service.Report(cmd.Context(), period)
			if err != nil {
				return err
			}
			a.render.Report(rep)
			return nil
		},
	}
}

func periodNames() []string {
	periods := core.Periods()
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = p.String()
	}
	return names
}

func parseCategory(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", core.ErrEmptyCategory
	}
	return s, nil
}

// parseRecordNumber converts a 1-based record number to a ledger index.
func parseRecordNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: record number %q", core.ErrInvalidReference, s)
	}
	return n - 1, nil
}
