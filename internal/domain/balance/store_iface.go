package balance

import (
	"context"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	// EnsureBalance returns the row for (employee, year), creating it with the
	// given allocation if absent. Concurrent callers must see the same row.
	EnsureBalance(ctx context.Context, employeeID string, year int, allocated decimal.Decimal) (Balance, error)
	// Debit must refuse, with ErrInsufficient, any debit larger than remaining.
	Debit(ctx context.Context, employeeID string, year int, days decimal.Decimal) (Balance, error)
	ListBalances(ctx context.Context, employeeID string) ([]Balance, error)
}
