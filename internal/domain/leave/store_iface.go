package leave

import (
	"context"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/balance"
	"hrflow/internal/domain/core"
)

type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes every store a leave transition touches, bound to one
// transaction so ledger and attendance writes commit with the status change.
type Tx interface {
	EmployeeByAccount(ctx context.Context, accountID string) (core.Employee, error)
	EmployeeByID(ctx context.Context, employeeID string) (core.Employee, error)
	ManagerEmails(ctx context.Context, managerIDs []string) ([]string, error)
	EmailsByRole(ctx context.Context, role string) ([]string, error)

	Balances() balance.StoreAPI
	Attendance() attendance.StoreAPI

	NextSeries(ctx context.Context, year int) (int64, error)
	InsertRequest(ctx context.Context, r Request) (Request, error)
	RequestByID(ctx context.Context, requestID string, lock bool) (Request, error)
	UpdateDecision(ctx context.Context, r Request) (Request, error)
	ListRequests(ctx context.Context, filter Filter, limit, offset int) (RequestListResult, error)
}
