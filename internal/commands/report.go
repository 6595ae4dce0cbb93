package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/currency"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/reports"
	"github.com/libros-dev/libros/internal/store"
	"github.com/libros-dev/libros/internal/tax"
)

func newDashboardCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the project's sales, purchases, IVA and recent activity",
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
				d := reports.BuildDashboard(txns, accts)

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s (%s)\n\n", proj.Name, proj.Type)
				tw := newTable(w)
				row(tw, "Total sales", currency.Format(d.TotalSales))
				row(tw, "Total purchases", currency.Format(d.TotalPurchases))
				row(tw, "Net result", currency.Format(d.NetResult))
				row(tw, "IVA generated", currency.Format(d.VATGenerated))
				row(tw, "IVA paid", currency.Format(d.VATPaid))
				row(tw, "Transactions", fmt.Sprint(d.TransactionCount))
				row(tw, "Accounts", fmt.Sprint(d.AccountCount))
				for _, t := range model.AccountTypes {
					row(tw, "  "+string(t), fmt.Sprint(d.AccountsByType[t]))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				if !d.Balanced {
					a.logger.Warn("ledger is not balanced", "project", proj.ID)
					fmt.Fprintln(w, "\nWarning: debits and credits differ; run 'libros ledger' for details.")
				}

				if len(d.Recent) > 0 {
					fmt.Fprintln(w, "\nRecent:")
					return writeTransactions(w, d.Recent)
				}
				return nil
			})
		},
	}
}

func newJournalCommand(opts *globalOptions) *cobra.Command {
	var kind, from, to string

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the Libro Diario, optionally filtered by kind and dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f reports.JournalFilter
			if kind != "" {
				k, ok := model.ParseKind(kind)
				if !ok {
					return fmt.Errorf("unknown transaction kind %q", kind)
				}
				f.Kind = k
			}
			var err error
			if f.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if f.To, err = parseDateFlag("to", to); err != nil {
				return err
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
				v := reports.FilterJournal(svc.Snapshot(), f)

				w := cmd.OutOrStdout()
				if err := writeTransactions(w, v.Transactions); err != nil {
					return err
				}
				fmt.Fprintf(w, "\n%d shown  total sales %s  total purchases %s\n",
					v.Count, currency.Format(v.TotalSales), currency.Format(v.TotalPurchases))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "sale or purchase")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD)")

	return cmd
}

func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(model.DateFormat, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return d, nil
}

func newLedgerCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger [account]",
		Short: "Show the Libro Mayor of one account, or every account's balance",
		Args:  cobra.MaximumNArgs(1),
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
				if len(args) == 0 {
					return writeGeneralLedger(cmd, txns, accts)
				}

				acct, ok := accounts.NewService(accts).Lookup(args[0])
				if !ok {
					return fmt.Errorf("account %s: %w", args[0], store.ErrNotFound)
				}
				l, _ := reports.AccountLedger(txns, accts, acct.ID)

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s %s (%s)\n\n", acct.Code, acct.Name, acct.Type)
				tw := newTable(w)
				row(tw, "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
				for _, m := range l.Movements {
					row(tw,
						m.Date.Format(model.DateFormat),
						m.Description,
						m.Debit.StringFixed(tax.Places),
						m.Credit.StringFixed(tax.Places),
						m.Balance.StringFixed(tax.Places),
					)
				}
				row(tw, "", "Total",
					l.TotalDebit.StringFixed(tax.Places),
					l.TotalCredit.StringFixed(tax.Places),
					l.Balance.StringFixed(tax.Places)+" "+string(l.Nature),
				)
				return tw.Flush()
			})
		},
	}
}

func writeGeneralLedger(cmd *cobra.Command, txns []model.Transaction, accts []model.Account) error {
	res := reports.GeneralLedger(txns, accts)

	w := cmd.OutOrStdout()
	tw := newTable(w)
	row(tw, "CODE", "NAME", "DEBIT", "CREDIT", "BALANCE", "NATURE")
	for _, s := range res.Accounts {
		row(tw,
			s.Account.Code,
			s.Account.Name,
			s.TotalDebit.StringFixed(tax.Places),
			s.TotalCredit.StringFixed(tax.Places),
			s.Balance.StringFixed(tax.Places),
			string(s.Nature),
		)
	}
	row(tw, "", "Total", res.TotalDebit.StringFixed(tax.Places), res.TotalCredit.StringFixed(tax.Places), "", "")
	if err := tw.Flush(); err != nil {
		return err
	}

	imb := res.Imbalances()
	if res.Balanced() && len(imb) == 0 {
		return nil
	}
	if !res.Balanced() {
		fmt.Fprintf(w, "\nDebits and credits differ by %s.\n", res.TotalDebit.Sub(res.TotalCredit).Abs().StringFixed(tax.Places))
	}
	if len(imb) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%d transactions are not balanced (missing Income, Expense or cash account):\n", len(imb))
	for _, i := range imb {
		fmt.Fprintf(w, "  %s debit %s credit %s\n", i.TransactionID, i.Debit.StringFixed(tax.Places), i.Credit.StringFixed(tax.Places))
	}
	return nil
}
