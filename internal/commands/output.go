package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/libros-dev/libros/internal/currency"
	"github.com/libros-dev/libros/internal/id"
	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/tax"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func row(w io.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func writeTransactions(w io.Writer, txns []model.Transaction) error {
	tw := newTable(w)
	row(tw, "ID", "DATE", "KIND", "COUNTERPARTY", "INVOICE", "BASE", "IVA", "TOTAL", "CATEGORY")
	for _, t := range txns {
		row(tw,
			id.Short(t.ID),
			t.DateString(),
			string(t.Kind),
			t.Counterparty,
			t.InvoiceNumber,
			t.BaseAmount.StringFixed(tax.Places),
			t.TaxAmount.StringFixed(tax.Places),
			t.TotalAmount.StringFixed(tax.Places),
			string(t.ExpenseCategory),
		)
	}
	return tw.Flush()
}

func writeTransaction(w io.Writer, verb string, t model.Transaction) {
	fmt.Fprintf(w, "%s %s %s %s: base %s, IVA %s, total %s (%s)\n",
		verb,
		strings.ToLower(string(t.Kind)),
		t.InvoiceNumber,
		t.Counterparty,
		t.BaseAmount.StringFixed(tax.Places),
		t.TaxAmount.StringFixed(tax.Places),
		currency.Format(t.TotalAmount),
		t.ID,
	)
}

// writeValidation lists field errors one per line and returns err unchanged.
func writeValidation(w io.Writer, err error) error {
	var verrs journal.Errors
	if errors.As(err, &verrs) {
		for _, f := range verrs.Fields() {
			fmt.Fprintf(w, "  %s: %s\n", f, verrs[f])
		}
	}
	return err
}
