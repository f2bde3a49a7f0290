package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"hrflow/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) EnsureBalance(ctx context.Context, employeeID string, year int, allocated decimal.Decimal) (Balance, error) {
	if _, err := s.DB.Exec(ctx, `
    INSERT INTO leave_balances (employee_id, year, allocated, taken, remaining)
    VALUES ($1,$2,$3,0,$3)
    ON CONFLICT (employee_id, year) DO NOTHING
  `, employeeID, year, allocated); err != nil {
		return Balance{}, err
	}

	var b Balance
	err := s.DB.QueryRow(ctx, `
    SELECT employee_id, year, allocated, taken, remaining, updated_at
    FROM leave_balances
    WHERE employee_id = $1 AND year = $2
  `, employeeID, year).Scan(&b.EmployeeID, &b.Year, &b.Allocated, &b.Taken, &b.Remaining, &b.UpdatedAt)
	if db.IsNoRows(err) {
		return Balance{}, ErrBalanceNotFound
	}
	return b, err
}

// Debit moves days from remaining to taken in a single statement so the
// ledger check constraint holds at every commit. A row that cannot cover the
// debit is left untouched and reported as ErrInsufficient.
func (s *Store) Debit(ctx context.Context, employeeID string, year int, days decimal.Decimal) (Balance, error) {
	var b Balance
	err := s.DB.QueryRow(ctx, `
    UPDATE leave_balances
    SET taken = taken + $3, remaining = remaining - $3, updated_at = now()
    WHERE employee_id = $1 AND year = $2 AND remaining >= $3
    RETURNING employee_id, year, allocated, taken, remaining, updated_at
  `, employeeID, year, days).Scan(&b.EmployeeID, &b.Year, &b.Allocated, &b.Taken, &b.Remaining, &b.UpdatedAt)
	if !db.IsNoRows(err) {
		return b, err
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM leave_balances WHERE employee_id = $1 AND year = $2)
  `, employeeID, year).Scan(&exists); err != nil {
		return Balance{}, err
	}
	if exists {
		return Balance{}, fmt.Errorf("%w: %s days requested", ErrInsufficient, days)
	}
	return Balance{}, ErrBalanceNotFound
}

func (s *Store) ListBalances(ctx context.Context, employeeID string) ([]Balance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, year, allocated, taken, remaining, updated_at
    FROM leave_balances
    WHERE employee_id = $1
    ORDER BY year DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.EmployeeID, &b.Year, &b.Allocated, &b.Taken, &b.Remaining, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
