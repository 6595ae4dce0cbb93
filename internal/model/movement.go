package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is one derived debit or credit on an account. Movements are
// computed on demand and never persisted.
type Movement struct {
	TransactionID string
	AccountID     string
	Date          time.Time
	Description   string
	Debit         decimal.Decimal // zero if credit side
	Credit        decimal.Decimal // zero if debit side
	Balance       decimal.Decimal // running balance after this movement
}
