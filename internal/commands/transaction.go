package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/currency"
	"github.com/libros-dev/libros/internal/id"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/reports"
	"github.com/libros-dev/libros/internal/tax"
)

// candidateFlags are the form fields shared by sale and purchase commands.
type candidateFlags struct {
	date         string
	counterparty string
	invoice      string
	amount       string
	description  string
	category     string
}

func (f *candidateFlags) register(cmd *cobra.Command, counterparty string, purchase bool) {
	cmd.Flags().StringVar(&f.date, "date", "", "date in YYYY-MM-DD format (default today)")
	cmd.Flags().StringVar(&f.counterparty, counterparty, "", counterparty+" name")
	cmd.Flags().StringVar(&f.invoice, "invoice", "", "invoice number (digits and dashes)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "base amount before IVA")
	cmd.Flags().StringVar(&f.description, "description", "", "description")
	if purchase {
		cmd.Flags().StringVar(&f.category, "category", "", "Merchandise, Service, OperatingExpense, FixedAsset or Other")
	}
}

func (f *candidateFlags) candidate(kind model.TransactionKind) journal.Candidate {
	date := f.date
	if date == "" {
		date = time.Now().Format(model.DateFormat)
	}
	return journal.Candidate{
		Kind:            kind,
		Date:            date,
		Counterparty:    f.counterparty,
		InvoiceNumber:   f.invoice,
		BaseAmount:      f.amount,
		Description:     f.description,
		ExpenseCategory: f.category,
	}
}

func newSaleCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Register and list sales (Libro de Ventas)",
	}
	cmd.AddCommand(
		newAddTransactionCommand(opts, model.KindSale, "customer"),
		newBookCommand(opts, model.KindSale),
	)
	return cmd
}

func newPurchaseCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Register, list, edit and delete purchases (Libro de Compras)",
	}
	cmd.AddCommand(
		newAddTransactionCommand(opts, model.KindPurchase, "supplier"),
		newBookCommand(opts, model.KindPurchase),
		newPurchaseEditCommand(opts),
		newPurchaseDeleteCommand(opts),
	)
	return cmd
}

func newAddTransactionCommand(opts *globalOptions, kind model.TransactionKind, counterparty string) *cobra.Command {
	var f candidateFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: fmt.Sprintf("Register a %s", strings.ToLower(string(kind))),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
				t, err := svc.Create(ctx, f.candidate(kind))
				if err != nil {
					return writeValidation(cmd.ErrOrStderr(), err)
				}
				a.touch(ctx, proj)
				writeTransaction(cmd.OutOrStdout(), "Registered", t)
				return nil
			})
		},
	}
	f.register(cmd, counterparty, kind == model.KindPurchase)

	return cmd
}

func newBookCommand(opts *globalOptions, kind model.TransactionKind) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the book with its base, IVA and total sums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
				b := reports.SalesBook(svc.Snapshot())
				if kind == model.KindPurchase {
					b = reports.PurchaseBook(svc.Snapshot())
				}
				return writeBook(cmd.OutOrStdout(), b)
			})
		},
	}
}

func writeBook(w io.Writer, b reports.Book) error {
	if err := writeTransactions(w, b.Transactions); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d transactions  base %s  IVA %s  total %s\n",
		len(b.Transactions),
		b.Base.StringFixed(tax.Places),
		b.Tax.StringFixed(tax.Places),
		currency.Format(b.Total),
	)
	if b.Kind == model.KindPurchase {
		byCat := b.ByCategory()
		for _, c := range model.ExpenseCategories {
			if total, ok := byCat[c]; ok {
				fmt.Fprintf(w, "  %-18s %s\n", c, currency.Format(total))
			}
		}
	}
	return nil
}

func newPurchaseEditCommand(opts *globalOptions) *cobra.Command {
	var f candidateFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a purchase; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

				txnID, err := resolveTransactionID(svc, args[0])
				if err != nil {
					return err
				}
				ed := journal.NewEditor(svc)
				if err := ed.StartEdit(txnID); err != nil {
					return err
				}
				draft := ed.Draft()
				flags := cmd.Flags()
				if flags.Changed("date") {
					draft.Date = f.date
				}
				if flags.Changed("supplier") {
					draft.Counterparty = f.counterparty
				}
				if flags.Changed("invoice") {
					draft.InvoiceNumber = f.invoice
				}
				if flags.Changed("amount") {
					draft.BaseAmount = f.amount
				}
				if flags.Changed("description") {
					draft.Description = f.description
				}
				if flags.Changed("category") {
					draft.ExpenseCategory = f.category
				}
				ed.SetDraft(draft)

				t, err := ed.Submit(ctx)
				if err != nil {
					return writeValidation(cmd.ErrOrStderr(), err)
				}
				a.touch(ctx, proj)
				writeTransaction(cmd.OutOrStdout(), "Updated", t)
				return nil
			})
		},
	}
	f.register(cmd, "supplier", true)

	return cmd
}

func newPurchaseDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
				txnID, err := resolveTransactionID(svc, args[0])
				if err != nil {
					return err
				}
				if err := svc.Delete(ctx, txnID); err != nil {
					return err
				}
				a.touch(ctx, proj)
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted purchase %s\n", txnID)
				return nil
			})
		},
	}
}

// resolveTransactionID accepts a full ID in any letter case or the short
// form printed by the list commands. An unknown reference is returned as is
// so the ledger reports it as not found.
func resolveTransactionID(svc *journal.Service, ref string) (string, error) {
	if full, err := id.Parse(ref); err == nil {
		return full, nil
	}
	ref = strings.ToLower(strings.TrimSpace(ref))

	var match string
	for _, t := range svc.Snapshot() {
		if id.Short(t.ID) != ref {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("transaction %s is ambiguous; use the full ID", ref)
		}
		match = t.ID
	}
	if match == "" {
		return ref, nil
	}
	return match, nil
}
