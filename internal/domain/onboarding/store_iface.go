package onboarding

import (
	"context"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
)

// Repository runs fn inside one transaction. Everything fn writes commits or
// rolls back together.
type Repository interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transactional view the state machine works against. Lock
// arguments take a row lock held until the transaction ends.
type Tx interface {
	Account(ctx context.Context, accountID string, lock bool) (auth.Account, error)
	EmailOwnedByOther(ctx context.Context, email, accountID string) (bool, error)
	UpdateAccountEmail(ctx context.Context, accountID, email string) error
	EmailsByRole(ctx context.Context, role string) ([]string, error)

	FormByAccount(ctx context.Context, accountID string, lock bool) (Form, error)
	FormByID(ctx context.Context, formID string, lock bool) (Form, error)
	InsertForm(ctx context.Context, f Form) (Form, error)
	UpdateForm(ctx context.Context, f Form) (Form, error)
	ListForms(ctx context.Context, status FormStatus, limit, offset int) ([]Form, error)

	StagingByID(ctx context.Context, stagingID string, lock bool) (Staging, error)
	StagingByAccount(ctx context.Context, accountID string) (Staging, error)
	InsertStaging(ctx context.Context, s Staging) (Staging, error)
	UpdateStaging(ctx context.Context, s Staging) (Staging, error)
	ListStaging(ctx context.Context, status StagingStatus, limit, offset int) ([]Staging, error)

	EmployeeByAccount(ctx context.Context, accountID string) (core.Employee, error)
	EmployeeEmailInUse(ctx context.Context, email string) (bool, error)
	EmployeeCodeInUse(ctx context.Context, code string) (bool, error)
	InsertEmployee(ctx context.Context, e core.Employee) (core.Employee, error)
	core.ManagerFinder
}
