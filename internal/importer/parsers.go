package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/libros-dev/libros/internal/journal"
	"github.com/libros-dev/libros/internal/model"
)

// NativeParser reads the transactions.csv files that export writes.
type NativeParser struct{}

// Format returns the parser name.
func (p *NativeParser) Format() string { return "libros" }

// Parse reads transactions.csv rows.
func (p *NativeParser) Parse(r io.Reader) ([]journal.Candidate, error) {
	return journal.ReadCandidates(r)
}

// BookParser reads a Libro de Ventas or Libro de Compras spreadsheet export:
// fecha, cliente or proveedor, nFactura, descripcion, monto, iva, total and,
// for purchases, tipoGasto. The iva and total columns are ignored; tax is
// always recomputed from monto.
type BookParser struct {
	kind model.TransactionKind
}

const (
	bookColDate     = 0
	bookColCparty   = 1
	bookColInvoice  = 2
	bookColDesc     = 3
	bookColBase     = 4
	bookColCategory = 7
	salesNumFields  = 7
	purchNumFields  = 8
)

// SalesBookParser returns a parser for Libro de Ventas exports.
func SalesBookParser() *BookParser {
	return &BookParser{kind: model.KindSale}
}

// PurchaseBookParser returns a parser for Libro de Compras exports.
func PurchaseBookParser() *BookParser {
	return &BookParser{kind: model.KindPurchase}
}

// Format returns the parser name.
func (p *BookParser) Format() string {
	if p.kind == model.KindSale {
		return "ventas"
	}
	return "compras"
}

func (p *BookParser) numFields() int {
	if p.kind == model.KindSale {
		return salesNumFields
	}
	return purchNumFields
}

// Parse reads a book export and returns candidates of the parser's kind.
func (p *BookParser) Parse(r io.Reader) ([]journal.Candidate, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = p.numFields()

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", p.Format(), err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var cands []journal.Candidate
	for _, rec := range records[1:] {
		c := journal.Candidate{
			Kind:          p.kind,
			Date:          rec[bookColDate],
			Counterparty:  rec[bookColCparty],
			InvoiceNumber: rec[bookColInvoice],
			Description:   rec[bookColDesc],
			BaseAmount:    rec[bookColBase],
		}
		if p.kind == model.KindPurchase {
			c.ExpenseCategory = rec[bookColCategory]
		}
		cands = append(cands, c)
	}
	return cands, nil
}
