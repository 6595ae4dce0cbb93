package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/buildinfo"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	dir     string
	project string
	debug   bool

	level  *slog.LevelVar
	logger *slog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{level: new(slog.LevelVar)}

	rootCmd := &cobra.Command{
		Use:     "libros",
		Short:   "Sales and purchase books with IVA, journal and general ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.level.Set(slog.LevelInfo)
			if opts.debug {
				opts.level.Set(slog.LevelDebug)
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: opts.level,
			}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dir, "dir", ".", "books directory containing libros.yaml")
	rootCmd.PersistentFlags().StringVarP(&opts.project, "project", "p", "", "project ID or name (default is the current project)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newProjectCommand(opts),
		newAccountCommand(opts),
		newSaleCommand(opts),
		newPurchaseCommand(opts),
		newJournalCommand(opts),
		newLedgerCommand(opts),
		newDashboardCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
