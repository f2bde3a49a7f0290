package attendance

import (
	"context"
	"time"

	"hrflow/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) InsertIfAbsent(ctx context.Context, rec Record) (bool, error) {
	var source any
	if rec.SourceRequestID != "" {
		source = rec.SourceRequestID
	}
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO attendance_records (employee_id, date, status, reason, source_request_id)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (employee_id, date) DO NOTHING
  `, rec.EmployeeID, rec.Date, string(rec.Status), rec.Reason, source)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) List(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, date, status, reason, COALESCE(source_request_id::text, ''), created_at
    FROM attendance_records
    WHERE employee_id = $1 AND date BETWEEN $2 AND $3
    ORDER BY date
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &status, &rec.Reason, &rec.SourceRequestID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
