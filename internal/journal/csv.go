package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/tax"
)

// Header is the CSV header for transactions.csv.
const Header = "date,kind,counterparty,invoice_number,description,base_amount,tax_amount,total_amount,expense_category"

const (
	numFields   = 9
	colDate     = 0
	colKind     = 1
	colCparty   = 2
	colInvoice  = 3
	colDesc     = 4
	colBase     = 5
	colTax      = 6
	colTotal    = 7
	colCategory = 8
)

// ReadCandidates reads transactions.csv rows as candidates. The tax and total
// columns may be blank; when present they must follow from the base amount.
func ReadCandidates(r io.Reader) ([]Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var out []Candidate
	for i, rec := range records[1:] {
		c, err := UnmarshalCandidate(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteTransactions writes transactions.csv.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, t := range txns {
		if err := cw.Write(MarshalTransaction(t)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(t model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = t.DateString()
	row[colKind] = string(t.Kind)
	row[colCparty] = t.Counterparty
	row[colInvoice] = t.InvoiceNumber
	row[colDesc] = t.Description
	row[colBase] = t.BaseAmount.StringFixed(tax.Places)
	row[colTax] = t.TaxAmount.StringFixed(tax.Places)
	row[colTotal] = t.TotalAmount.StringFixed(tax.Places)
	row[colCategory] = string(t.ExpenseCategory)
	return row
}

// UnmarshalCandidate converts a CSV row to a Candidate.
func UnmarshalCandidate(record []string) (Candidate, error) {
	if len(record) != numFields {
		return Candidate{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	kind, ok := model.ParseKind(strings.TrimSpace(record[colKind]))
	if !ok {
		return Candidate{}, fmt.Errorf("parsing kind %q: unknown transaction kind", record[colKind])
	}

	if record[colTax] != "" || record[colTotal] != "" {
		if err := checkRecordedTax(record[colBase], record[colTax], record[colTotal]); err != nil {
			return Candidate{}, err
		}
	}

	return Candidate{
		Kind:            kind,
		Date:            record[colDate],
		Counterparty:    record[colCparty],
		InvoiceNumber:   record[colInvoice],
		Description:     record[colDesc],
		BaseAmount:      record[colBase],
		ExpenseCategory: record[colCategory],
	}, nil
}

func checkRecordedTax(base, taxAmt, total string) error {
	b, err := tax.ParseAmount(base)
	if err != nil {
		return err
	}
	want := tax.Compute(b.Round(tax.Places))
	if taxAmt != "" {
		got, err := tax.ParseAmount(taxAmt)
		if err != nil {
			return err
		}
		if !got.Equal(want.Tax) {
			return fmt.Errorf("tax %s: %w (want %s)", taxAmt, ErrInconsistentTax, want.Tax.StringFixed(tax.Places))
		}
	}
	if total != "" {
		got, err := tax.ParseAmount(total)
		if err != nil {
			return err
		}
		if !got.Equal(want.Total) {
			return fmt.Errorf("total %s: %w (want %s)", total, ErrInconsistentTax, want.Total.StringFixed(tax.Places))
		}
	}
	return nil
}
