package auth

import (
	"context"
	"strings"

	"hrflow/internal/platform/apperror"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

type HireInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role" validate:"omitempty,oneof=employee manager hr"`
}

// CreateHire creates a login for a new hire with a one-time password. The
// plain password is only ever returned here.
func (s *Service) CreateHire(ctx context.Context, in HireInput) (HireResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Role == "" {
		in.Role = RoleEmployee
	}
	if err := apperror.ValidateStruct(in); err != nil {
		return HireResult{}, err
	}

	temp := TempPassword()
	hash, err := HashPassword(temp)
	if err != nil {
		return HireResult{}, err
	}
	account, err := s.Store.CreateAccount(ctx, in.Email, hash, in.Role, true)
	if err != nil {
		return HireResult{}, err
	}
	return HireResult{Account: account, TempPassword: temp}, nil
}

func (s *Service) Account(ctx context.Context, accountID string) (Account, error) {
	return s.Store.AccountByID(ctx, accountID, false)
}
