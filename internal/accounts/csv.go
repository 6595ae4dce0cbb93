package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/libros-dev/libros/internal/model"
)

const (
	numFields = 4
	colCode   = 0
	colName   = 1
	colType   = 2
	colCash   = 3
)

// Header is the CSV header for accounts.csv.
var Header = []string{"code", "name", "type", "cash_equivalent"}

// ReadAccounts reads accounts.csv. IDs, scope and timestamps are left for the
// registry to assign.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCash] = strconv.FormatBool(acct.CashEquivalent)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	typ, ok := model.ParseAccountType(record[colType])
	if !ok {
		return model.Account{}, fmt.Errorf("parsing type %q: unknown account type", record[colType])
	}

	cash := model.LooksLikeCash(record[colName])
	if record[colCash] != "" {
		var err error
		cash, err = strconv.ParseBool(record[colCash])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing cash_equivalent %q: %w", record[colCash], err)
		}
	}

	return model.Account{
		Code:           record[colCode],
		Name:           record[colName],
		Type:           typ,
		CashEquivalent: cash,
	}, nil
}
