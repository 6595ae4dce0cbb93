package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Code is the single currency the books are kept in.
const Code = money.USD

// Format renders an amount with two decimals, grouping and the dollar sign:
// 1234.5 -> "$1,234.50". Amounts are rounded to cents first.
func Format(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2).IntPart()
	return money.New(cents, Code).Display()
}
