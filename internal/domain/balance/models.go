package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one employee's leave counters for a calendar year.
// Remaining always equals Allocated minus Taken.
type Balance struct {
	EmployeeID string          `json:"employeeId"`
	Year       int             `json:"year"`
	Allocated  decimal.Decimal `json:"allocated"`
	Taken      decimal.Decimal `json:"taken"`
	Remaining  decimal.Decimal `json:"remaining"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (b Balance) Consistent() bool {
	return b.Remaining.Equal(b.Allocated.Sub(b.Taken))
}
