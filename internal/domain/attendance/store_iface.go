package attendance

import (
	"context"
	"time"
)

type StoreAPI interface {
	// InsertIfAbsent writes rec unless (employee, date) already has a row and
	// reports whether it wrote.
	InsertIfAbsent(ctx context.Context, rec Record) (bool, error)
	List(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
}
