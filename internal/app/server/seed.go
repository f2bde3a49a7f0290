package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/platform/config"
)

// Seed creates the bootstrap HR login and the manager directory. It is safe
// to run on every start; existing rows are left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	accounts := auth.NewStore(pool)
	if _, err := ensureAccount(ctx, accounts, cfg.SeedHREmail, cfg.SeedHRPassword, auth.RoleHR, false); err != nil {
		return fmt.Errorf("seed hr account: %w", err)
	}

	directory := core.NewStore(pool)
	for _, entry := range cfg.SeedManagers {
		name, email, ok := parseManager(entry)
		if !ok {
			slog.Warn("seed manager skipped", "entry", entry)
			continue
		}
		m := core.Manager{Name: name, Email: email}
		if cfg.SeedManagerPassword != "" {
			account, err := ensureAccount(ctx, accounts, email, cfg.SeedManagerPassword, auth.RoleManager, true)
			if err != nil {
				return fmt.Errorf("seed manager account %s: %w", email, err)
			}
			m.AccountID = account.ID
		}
		if _, err := directory.CreateManager(ctx, m); err != nil && !errors.Is(err, core.ErrDuplicateEmployee) {
			return fmt.Errorf("seed manager %s: %w", email, err)
		}
	}
	return nil
}

func ensureAccount(ctx context.Context, store *auth.Store, email, password, role string, temp bool) (auth.Account, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return auth.Account{}, nil
	}
	account, err := store.AccountByEmail(ctx, email)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, auth.ErrAccountNotFound) {
		return auth.Account{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return auth.Account{}, err
	}
	return store.CreateAccount(ctx, strings.ToLower(strings.TrimSpace(email)), hash, role, temp)
}

// parseManager reads "Name:email".
func parseManager(entry string) (string, string, bool) {
	name, email, ok := strings.Cut(entry, ":")
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if !ok || name == "" || !strings.Contains(email, "@") {
		return "", "", false
	}
	return name, email, true
}
