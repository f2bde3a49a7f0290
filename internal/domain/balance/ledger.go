package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultAllocation is the yearly allowance used when none is configured.
var DefaultAllocation = decimal.NewFromInt(27)

// Ledger owns per-employee, per-year leave counters. It has no transitions
// of its own; callers decide when a debit is allowed.
type Ledger struct {
	store      StoreAPI
	allocation decimal.Decimal
}

func NewLedger(store StoreAPI, allocation decimal.Decimal) *Ledger {
	if !allocation.IsPositive() {
		allocation = DefaultAllocation
	}
	return &Ledger{store: store, allocation: allocation}
}

func (l *Ledger) Allocation() decimal.Decimal {
	return l.allocation
}

// Get returns the year's balance, lazily creating it with the configured
// allocation.
func (l *Ledger) Get(ctx context.Context, employeeID string, year int) (Balance, error) {
	return l.store.EnsureBalance(ctx, employeeID, year, l.allocation)
}

// Debit records days as taken. It fails with ErrInsufficient rather than
// take remaining below zero.
func (l *Ledger) Debit(ctx context.Context, employeeID string, year int, days decimal.Decimal) (Balance, error) {
	if !days.IsPositive() {
		return Balance{}, fmt.Errorf("%w: %s", ErrInvalidAmount, days)
	}
	if _, err := l.Get(ctx, employeeID, year); err != nil {
		return Balance{}, err
	}
	return l.store.Debit(ctx, employeeID, year, days)
}

func (l *Ledger) List(ctx context.Context, employeeID string) ([]Balance, error) {
	return l.store.ListBalances(ctx, employeeID)
}
