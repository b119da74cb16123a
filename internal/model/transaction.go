package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single recorded money movement.
// Amount is always non-negative; the direction comes from Type.
type Transaction struct {
	Date        time.Time
	CategoryID  *int64 // nil when the transaction has no category
	Description string
	Type        CategoryType
	Amount      decimal.Decimal
	ID          int64
}

// HasCategory reports whether the transaction references a category.
func (t *Transaction) HasCategory() bool {
	return t.CategoryID != nil
}

// Totals holds the aggregate income and expenses over a filtered set of transactions.
type Totals struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
}

// ToMillis converts a time to the epoch-millisecond form stored in the database.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored epoch-millisecond value back to a local time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
