package leave

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/balance"
	"hrflow/internal/domain/core"
	"hrflow/internal/platform/db"
)

type Store struct {
	DB db.Beginner
}

func NewStore(pool db.Beginner) *Store {
	return &Store{DB: pool}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, s.DB, func(tx pgx.Tx) error {
		return fn(&pgTx{
			q:          tx,
			accounts:   auth.NewStore(tx),
			directory:  core.NewStore(tx),
			balances:   balance.NewStore(tx),
			attendance: attendance.NewStore(tx),
		})
	})
}

type pgTx struct {
	q          db.Querier
	accounts   *auth.Store
	directory  *core.Store
	balances   *balance.Store
	attendance *attendance.Store
}

func (t *pgTx) Balances() balance.StoreAPI {
	return t.balances
}

func (t *pgTx) Attendance() attendance.StoreAPI {
	return t.attendance
}

func (t *pgTx) EmployeeByAccount(ctx context.Context, accountID string) (core.Employee, error) {
	return t.directory.EmployeeByAccount(ctx, accountID)
}

func (t *pgTx) EmployeeByID(ctx context.Context, employeeID string) (core.Employee, error) {
	return t.directory.EmployeeByID(ctx, employeeID)
}

func (t *pgTx) ManagerEmails(ctx context.Context, managerIDs []string) ([]string, error) {
	managers, err := t.directory.ManagersByIDs(ctx, managerIDs)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range managers {
		if m.Active() {
			out = append(out, m.Email)
		}
	}
	return out, nil
}

func (t *pgTx) EmailsByRole(ctx context.Context, role string) ([]string, error) {
	return t.accounts.EmailsByRole(ctx, role)
}

// NextSeries bumps the per-year counter. The row lock taken by the upsert
// serialises concurrent submissions for the same year.
func (t *pgTx) NextSeries(ctx context.Context, year int) (int64, error) {
	var n int64
	err := t.q.QueryRow(ctx, `
    INSERT INTO leave_series_counters (year, last_value)
    VALUES ($1, 1)
    ON CONFLICT (year) DO UPDATE
      SET last_value = leave_series_counters.last_value + 1,
          updated_at = now()
    RETURNING last_value
  `, year).Scan(&n)
	return n, err
}

const requestColumns = `r.id, r.series, r.employee_id, e.name, r.leave_type, r.from_date, r.to_date, r.half_day,
      r.total_days, r.reason, r.status,
      COALESCE(r.manager_actor::text, ''), r.manager_at, r.manager_notes,
      COALESCE(r.hr_actor::text, ''), r.hr_at, r.hr_notes,
      r.leave_balance_before, r.created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	var status string
	if err := row.Scan(&r.ID, &r.Series, &r.EmployeeID, &r.EmployeeName, &r.LeaveType, &r.FromDate, &r.ToDate, &r.HalfDay,
		&r.TotalDays, &r.Reason, &status,
		&r.ManagerActor, &r.ManagerAt, &r.ManagerNotes,
		&r.HRActor, &r.HRAt, &r.HRNotes,
		&r.BalanceBefore, &r.CreatedAt); err != nil {
		return Request{}, err
	}
	r.Status = Status(status)
	return r, nil
}

func (t *pgTx) InsertRequest(ctx context.Context, r Request) (Request, error) {
	var id string
	if err := t.q.QueryRow(ctx, `
    INSERT INTO leave_requests (series, employee_id, leave_type, from_date, to_date, half_day, total_days, reason, status, leave_balance_before)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, r.Series, r.EmployeeID, r.LeaveType, r.FromDate, r.ToDate, r.HalfDay, r.TotalDays, r.Reason, string(r.Status), r.BalanceBefore).Scan(&id); err != nil {
		return Request{}, err
	}
	return t.RequestByID(ctx, id, false)
}

func (t *pgTx) RequestByID(ctx context.Context, requestID string, lock bool) (Request, error) {
	query := `
    SELECT ` + requestColumns + `
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id
    WHERE r.id = $1`
	if lock {
		query += " FOR UPDATE OF r"
	}
	req, err := scanRequest(t.q.QueryRow(ctx, query, requestID))
	if db.IsNoRows(err) {
		return Request{}, ErrRequestNotFound
	}
	return req, err
}

// UpdateDecision persists status and both approval stages. total_days and
// the balance snapshot are never rewritten.
func (t *pgTx) UpdateDecision(ctx context.Context, r Request) (Request, error) {
	tag, err := t.q.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2,
        manager_actor = $3, manager_at = $4, manager_notes = $5,
        hr_actor = $6, hr_at = $7, hr_notes = $8
    WHERE id = $1
  `, r.ID, string(r.Status),
		nullIfEmpty(r.ManagerActor), r.ManagerAt, r.ManagerNotes,
		nullIfEmpty(r.HRActor), r.HRAt, r.HRNotes)
	if err != nil {
		return Request{}, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, ErrRequestNotFound
	}
	return t.RequestByID(ctx, r.ID, false)
}

func (t *pgTx) ListRequests(ctx context.Context, filter Filter, limit, offset int) (RequestListResult, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(" AND r.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND r.status = $%d", len(args))
	}

	var total int
	if err := t.q.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests r"+where, args...).Scan(&total); err != nil {
		return RequestListResult{}, err
	}

	query := `
    SELECT ` + requestColumns + `
    FROM leave_requests r
    JOIN employees e ON e.id = r.employee_id` + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := t.q.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return RequestListResult{}, err
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return RequestListResult{}, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return RequestListResult{}, err
	}
	return RequestListResult{Requests: requests, Total: total}, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Tx = (*pgTx)(nil)
