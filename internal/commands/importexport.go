package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/importer"
	"github.com/libros-dev/libros/internal/journal"
)

func newImportCommand(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import transactions from CSV; without a file, every CSV in import/",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := importer.DefaultRegistry().Get(format)
			if p == nil {
				return fmt.Errorf("unknown format %q (known: %s)", format, strings.Join(importer.DefaultRegistry().Formats(), ", "))
			}

			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				proj, err := a.project(ctx)
				if err != nil {
					return err
				}
				svc, err := a.ledger(ctx, proj)
				if err != nil {
					return err
				}

				var results []importer.FileResult
				if len(args) == 1 {
					f, err := fileInfo(args[0])
					if err != nil {
						return err
					}
					res, err := importer.ImportFile(ctx, svc, p, f)
					results = append(results, res)
					if err != nil {
						return err
					}
				} else {
					results, err = importer.Run(ctx, a.dir, svc, p)
					if err != nil {
						return err
					}
				}

				w := cmd.OutOrStdout()
				created, rejected := 0, 0
				for _, r := range results {
					created += r.Created
					rejected += len(r.Rejected)
					fmt.Fprintf(w, "%s: %d created, %d rejected\n", r.File, r.Created, len(r.Rejected))
					for _, re := range r.Rejected {
						fmt.Fprintf(w, "  row %d: %s\n", re.Row, re.Errs.Error())
					}
				}
				if created > 0 {
					a.touch(ctx, proj)
				}
				if rejected > 0 {
					return fmt.Errorf("%d rows rejected; files with rejected rows were not imported", rejected)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "libros", "CSV layout: libros, ventas or compras")

	return cmd
}

func fileInfo(path string) (importer.FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return importer.FileInfo{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return importer.FileInfo{Name: filepath.Base(path), Path: path, Size: st.Size()}, nil
}

func newExportCommand(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write transactions.csv and accounts.csv for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				proj, err := a.project(ctx)
				if err != nil {
					return err
				}
				txns, accts, err := a.books(ctx, proj)
				if err != nil {
					return err
				}

				dir := out
				if dir == "" {
					dir = filepath.Join(a.dir, "exports")
				}
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating export directory: %w", err)
				}

				if err := writeFile(filepath.Join(dir, "transactions.csv"), func(f *os.File) error {
					return journal.WriteTransactions(f, txns)
				}); err != nil {
					return err
				}
				if err := writeFile(filepath.Join(dir, "accounts.csv"), func(f *os.File) error {
					return accounts.WriteAccounts(f, accts)
				}); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions and %d accounts to %s\n", len(txns), len(accts), dir)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory (default exports/)")

	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
