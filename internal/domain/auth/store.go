package auth

import (
	"context"
	"fmt"
	"strings"

	"hrflow/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

const accountColumns = "id, email, role, temp_password, status, created_at, updated_at"

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.Role, &a.TempPassword, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (s *Store) AccountByID(ctx context.Context, accountID string, lock bool) (Account, error) {
	account, err := scanAccount(s.DB.QueryRow(ctx, db.ForUpdate(`
    SELECT `+accountColumns+`
    FROM accounts
    WHERE id = $1`, lock), accountID))
	if db.IsNoRows(err) {
		return Account{}, ErrAccountNotFound
	}
	return account, err
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (Account, error) {
	account, err := scanAccount(s.DB.QueryRow(ctx, `
    SELECT `+accountColumns+`
    FROM accounts
    WHERE lower(email) = lower($1)
  `, strings.TrimSpace(email)))
	if db.IsNoRows(err) {
		return Account{}, ErrAccountNotFound
	}
	return account, err
}

func (s *Store) CreateAccount(ctx context.Context, email, passwordHash, role string, temp bool) (Account, error) {
	account, err := scanAccount(s.DB.QueryRow(ctx, `
    INSERT INTO accounts (email, password_hash, role, temp_password)
    VALUES ($1,$2,$3,$4)
    RETURNING `+accountColumns, strings.TrimSpace(email), passwordHash, role, temp))
	if _, dup := db.UniqueViolation(err); dup {
		return Account{}, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	return account, err
}

// EmailOwnedByOther reports whether email is the login of an account other
// than accountID.
func (s *Store) EmailOwnedByOther(ctx context.Context, email, accountID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM accounts
    WHERE lower(email) = lower($1) AND id <> $2
  `, email, accountID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) UpdateEmail(ctx context.Context, accountID, email string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE accounts SET email = $1, updated_at = now()
    WHERE id = $2
  `, email, accountID)
	if _, dup := db.UniqueViolation(err); dup {
		return fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (s *Store) EmailsByRole(ctx context.Context, role string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT email
    FROM accounts
    WHERE role = $1 AND status = 'active'
    ORDER BY email
  `, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
