package core

import (
	"context"
	"strings"

	"hrflow/internal/platform/apperror"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type ManagerInput struct {
	Name       string `json:"name" validate:"required,max=200"`
	Email      string `json:"email" validate:"required,email,max=254"`
	Department string `json:"department" validate:"max=100"`
	AccountID  string `json:"accountId" validate:"omitempty,uuid"`
}

func (s *Service) EmployeeByAccount(ctx context.Context, accountID string) (Employee, error) {
	return s.store.EmployeeByAccount(ctx, accountID)
}

func (s *Service) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.EmployeeByID(ctx, employeeID)
}

func (s *Service) ListManagers(ctx context.Context, status string) ([]Manager, error) {
	if status != "" && status != StatusActive && status != StatusInactive {
		return nil, apperror.Invalid("status", "must be one of: active inactive")
	}
	return s.store.ListManagers(ctx, status)
}

// CreateManager adds a directory entry promotions can reference.
func (s *Service) CreateManager(ctx context.Context, in ManagerInput) (Manager, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Department = strings.TrimSpace(in.Department)
	if err := apperror.ValidateStruct(in); err != nil {
		return Manager{}, err
	}
	return s.store.CreateManager(ctx, Manager{
		AccountID:  in.AccountID,
		Name:       in.Name,
		Email:      in.Email,
		Department: in.Department,
	})
}

func (s *Service) ResolveManager(ctx context.Context, ident string) (Manager, error) {
	return ResolveManager(ctx, s.store, ident)
}
