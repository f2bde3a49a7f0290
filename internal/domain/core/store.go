package core

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

const employeeColumns = `id, account_id, employee_code, name, company_email,
      manager_1, manager_2, manager_3, employment_type, status,
      department, designation, location, joined_on, created_at`

func scanEmployee(row interface{ Scan(...any) error }) (Employee, error) {
	var e Employee
	var m1 string
	var m2, m3 *string
	if err := row.Scan(&e.ID, &e.AccountID, &e.EmployeeCode, &e.Name, &e.CompanyEmail,
		&m1, &m2, &m3, &e.EmploymentType, &e.Status,
		&e.Department, &e.Designation, &e.Location, &e.JoinedOn, &e.CreatedAt); err != nil {
		return Employee{}, err
	}
	e.ManagerIDs = []string{m1}
	for _, m := range []*string{m2, m3} {
		if m != nil && *m != "" {
			e.ManagerIDs = append(e.ManagerIDs, *m)
		}
	}
	return e, nil
}

func (s *Store) EmployeeByAccount(ctx context.Context, accountID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE account_id = $1
  `, accountID))
	if db.IsNoRows(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE id = $1
  `, employeeID))
	if db.IsNoRows(err) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmailInUse(ctx context.Context, email string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE lower(company_email) = lower($1)", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CodeInUse(ctx context.Context, code string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE employee_code = $1", code).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) InsertEmployee(ctx context.Context, e Employee) (Employee, error) {
	if len(e.ManagerIDs) == 0 || len(e.ManagerIDs) > MaxManagers {
		return Employee{}, fmt.Errorf("employee needs 1 to %d managers, got %d", MaxManagers, len(e.ManagerIDs))
	}
	slots := make([]any, MaxManagers)
	for i := range slots {
		if i < len(e.ManagerIDs) {
			slots[i] = e.ManagerIDs[i]
		}
	}
	out, err := scanEmployee(s.DB.QueryRow(ctx, `
    INSERT INTO employees (account_id, employee_code, name, company_email, manager_1, manager_2, manager_3,
      employment_type, status, department, designation, location, joined_on)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING `+employeeColumns,
		e.AccountID, e.EmployeeCode, e.Name, e.CompanyEmail, slots[0], slots[1], slots[2],
		e.EmploymentType, e.Status, e.Department, e.Designation, e.Location, e.JoinedOn))
	if constraint, dup := db.UniqueViolation(err); dup {
		return Employee{}, fmt.Errorf("%w: %s", ErrDuplicateEmployee, constraint)
	}
	return out, err
}

const managerColumns = "id, COALESCE(account_id::text, ''), name, email, department, status, created_at"

func (s *Store) queryManagers(ctx context.Context, query string, args ...any) ([]Manager, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Manager
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.AccountID, &m.Name, &m.Email, &m.Department, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) FindManagers(ctx context.Context, ident string) ([]Manager, error) {
	return s.queryManagers(ctx, `
    SELECT `+managerColumns+`
    FROM managers
    WHERE id::text = $1 OR lower(email) = lower($1) OR lower(name) = lower($1)
  `, strings.TrimSpace(ident))
}

func (s *Store) ManagersByIDs(ctx context.Context, ids []string) ([]Manager, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryManagers(ctx, `
    SELECT `+managerColumns+`
    FROM managers
    WHERE id::text = ANY($1)
  `, ids)
}

func (s *Store) ManagerByAccount(ctx context.Context, accountID string) (Manager, error) {
	managers, err := s.queryManagers(ctx, `
    SELECT `+managerColumns+`
    FROM managers
    WHERE account_id = $1
  `, accountID)
	if err != nil {
		return Manager{}, err
	}
	if len(managers) == 0 {
		return Manager{}, ErrManagerNotFound
	}
	return managers[0], nil
}

func (s *Store) ListManagers(ctx context.Context, status string) ([]Manager, error) {
	if status == "" {
		return s.queryManagers(ctx, `SELECT `+managerColumns+` FROM managers ORDER BY name`)
	}
	return s.queryManagers(ctx, `
    SELECT `+managerColumns+`
    FROM managers
    WHERE status = $1
    ORDER BY name
  `, status)
}

func (s *Store) CreateManager(ctx context.Context, m Manager) (Manager, error) {
	var accountID any
	if m.AccountID != "" {
		accountID = m.AccountID
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	managers, err := s.queryManagers(ctx, `
    INSERT INTO managers (account_id, name, email, department, status)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT ((lower(email))) DO NOTHING
    RETURNING `+managerColumns, accountID, m.Name, m.Email, m.Department, m.Status)
	if err != nil {
		return Manager{}, err
	}
	if len(managers) == 0 {
		return Manager{}, fmt.Errorf("%w: manager %s", ErrDuplicateEmployee, m.Email)
	}
	return managers[0], nil
}
