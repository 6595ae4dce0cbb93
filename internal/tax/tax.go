package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is the IVA rate applied to every transaction.
var Rate = decimal.RequireFromString("0.13")

// Places is the number of decimal places amounts are persisted with.
const Places = 2

// Breakdown is a base amount with its tax and total.
type Breakdown struct {
	Base  decimal.Decimal
	Tax   decimal.Decimal
	Total decimal.Decimal
}

// Compute returns the tax and total for base. Tax is rounded half away from
// zero to two places; total is base plus the rounded tax.
func Compute(base decimal.Decimal) Breakdown {
	t := base.Mul(Rate).Round(Places)
	return Breakdown{
		Base:  base,
		Tax:   t,
		Total: base.Add(t),
	}
}

// ComputeString parses a user-entered base, rounds it to cents and computes
// its breakdown.
func ComputeString(base string) (Breakdown, error) {
	d, err := ParseAmount(base)
	if err != nil {
		return Breakdown{}, err
	}
	return Compute(d.Round(Places)), nil
}

// ParseAmount parses a user-entered amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("parsing amount: empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return d, nil
}

// Consistent reports whether tax and total match the rule for base.
func Consistent(base, tax, total decimal.Decimal) bool {
	b := Compute(base)
	return b.Tax.Equal(tax) && b.Total.Equal(total)
}
