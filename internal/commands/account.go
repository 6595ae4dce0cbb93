package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/store"
)

func newAccountCommand(opts *globalOptions) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	cmd.PersistentFlags().BoolVar(&global, "global", false, "act on the global catalog instead of the project")

	cmd.AddCommand(
		newAccountAddCommand(opts, &global),
		newAccountListCommand(opts, &global),
		newAccountUpdateCommand(opts, &global),
		newAccountDeleteCommand(opts, &global),
		newAccountImportCommand(opts, &global),
	)
	return cmd
}

// accountScope returns the registry for the global catalog or the selected
// project.
func accountScope(ctx context.Context, a *app, global bool) (*accounts.Registry, error) {
	if global {
		return a.registry(""), nil
	}
	proj, err := a.project(ctx)
	if err != nil {
		return nil, err
	}
	return a.registry(proj.ID), nil
}

func parseAccountType(s string) (model.AccountType, error) {
	t, ok := model.ParseAccountType(s)
	if !ok {
		return "", fmt.Errorf("%w: %q", accounts.ErrInvalidType, s)
	}
	return t, nil
}

func newAccountAddCommand(opts *globalOptions, global *bool) *cobra.Command {
	var accountType string
	var cash bool

	cmd := &cobra.Command{
		Use:   "add <code> <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseAccountType(accountType)
			if err != nil {
				return err
			}
			p := accounts.CreateParams{Code: args[0], Name: args[1], Type: t}
			if cmd.Flags().Changed("cash") {
				p.CashEquivalent = &cash
			}
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				reg, err := accountScope(ctx, a, *global)
				if err != nil {
					return err
				}
				acct, err := reg.Create(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added account %s %s (%s)\n", acct.Code, acct.Name, acct.Type)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "Asset, Liability, Equity, Income or Expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().BoolVar(&cash, "cash", false, "cash-equivalent account (default from the name)")

	return cmd
}

func newAccountListCommand(opts *globalOptions, global *bool) *cobra.Command {
	var accountType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts by code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				reg, err := accountScope(ctx, a, *global)
				if err != nil {
					return err
				}
				svc, err := reg.Load(ctx)
				if err != nil {
					return err
				}
				accts := svc.All()
				if accountType != "" {
					t, err := parseAccountType(accountType)
					if err != nil {
						return err
					}
					accts = svc.ByType(t)
				}

				tw := newTable(cmd.OutOrStdout())
				row(tw, "CODE", "NAME", "TYPE", "CASH")
				for _, acct := range accts {
					row(tw, acct.Code, acct.Name, string(acct.Type), strconv.FormatBool(acct.CashEquivalent))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only accounts of this type")

	return cmd
}

func newAccountUpdateCommand(opts *globalOptions, global *bool) *cobra.Command {
	var code, name, accountType string
	var cash bool

	cmd := &cobra.Command{
		Use:   "update <account>",
		Short: "Update an account by code or ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p accounts.UpdateParams
			if cmd.Flags().Changed("code") {
				p.Code = &code
			}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("type") {
				t, err := parseAccountType(accountType)
				if err != nil {
					return err
				}
				p.Type = &t
			}
			if cmd.Flags().Changed("cash") {
				p.CashEquivalent = &cash
			}
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				reg, acct, err := lookupAccount(ctx, a, *global, args[0])
				if err != nil {
					return err
				}
				acct, err = reg.Update(ctx, acct.ID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated account %s %s (%s)\n", acct.Code, acct.Name, acct.Type)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "new code")
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&accountType, "type", "", "new type (project accounts only)")
	cmd.Flags().BoolVar(&cash, "cash", false, "cash-equivalent account")

	return cmd
}

func newAccountDeleteCommand(opts *globalOptions, global *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account by code or ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				reg, acct, err := lookupAccount(ctx, a, *global, args[0])
				if err != nil {
					return err
				}
				if err := reg.Delete(ctx, acct.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s %s\n", acct.Code, acct.Name)
				return nil
			})
		},
	}
}

func lookupAccount(ctx context.Context, a *app, global bool, ref string) (*accounts.Registry, model.Account, error) {
	reg, err := accountScope(ctx, a, global)
	if err != nil {
		return nil, model.Account{}, err
	}
	svc, err := reg.Load(ctx)
	if err != nil {
		return nil, model.Account{}, err
	}
	acct, ok := svc.Lookup(ref)
	if !ok {
		return nil, model.Account{}, fmt.Errorf("account %s: %w", ref, store.ErrNotFound)
	}
	return reg, acct, nil
}

func newAccountImportCommand(opts *globalOptions, global *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "import <accounts.csv>",
		Short: "Add the accounts of a CSV file whose codes are not yet in the chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			chart, err := accounts.ReadAccounts(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				reg, err := accountScope(ctx, a, *global)
				if err != nil {
					return err
				}
				created, err := reg.Seed(ctx, chart)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d accounts\n", created, len(chart))
				return nil
			})
		},
	}
}
