package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ManagerFinder returns every manager whose id, email or name equals ident.
type ManagerFinder interface {
	FindManagers(ctx context.Context, ident string) ([]Manager, error)
}

// ResolveManager maps an identifier to exactly one active manager. Ids win
// over emails, emails over names; a name shared by several managers does not
// resolve.
func ResolveManager(ctx context.Context, finder ManagerFinder, ident string) (Manager, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return Manager{}, fmt.Errorf("%w: empty identifier", ErrManagerNotFound)
	}
	matches, err := finder.FindManagers(ctx, ident)
	if err != nil {
		return Manager{}, err
	}

	var byEmail, byName []Manager
	for _, m := range matches {
		switch {
		case m.ID == ident:
			return requireActive(m)
		case strings.EqualFold(m.Email, ident):
			byEmail = append(byEmail, m)
		case strings.EqualFold(m.Name, ident):
			byName = append(byName, m)
		}
	}
	if len(byEmail) == 1 {
		return requireActive(byEmail[0])
	}
	switch len(byName) {
	case 0:
		return Manager{}, fmt.Errorf("%w: %q", ErrManagerNotFound, ident)
	case 1:
		return requireActive(byName[0])
	default:
		return Manager{}, fmt.Errorf("%w: %q matches %d managers", ErrManagerNotFound, ident, len(byName))
	}
}

func requireActive(m Manager) (Manager, error) {
	if !m.Active() {
		return Manager{}, fmt.Errorf("%w: %s", ErrManagerInactive, m.Name)
	}
	return m, nil
}

// RandomEmployeeCode yields EMP<year><5 digits>. Callers check uniqueness.
func RandomEmployeeCode(year int) string {
	return fmt.Sprintf("EMP%d%05d", year, rand.IntN(100000))
}
