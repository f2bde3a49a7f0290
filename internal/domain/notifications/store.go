package notifications

import (
	"context"

	"hrflow/internal/platform/db"
)

type Store struct {
	DB db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{DB: q}
}

func (s *Store) RecordDelivery(ctx context.Context, d Delivery) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notification_deliveries (recipient, template, subject, channel, status, error)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, d.Recipient, d.Template, d.Subject, d.Channel, d.Status, d.Error)
	return err
}

func (s *Store) ListDeliveries(ctx context.Context, recipient string, limit, offset int) ([]Delivery, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, recipient, template, subject, channel, status, error, created_at
    FROM notification_deliveries
    WHERE ($1 = '' OR lower(recipient) = lower($1))
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, recipient, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.Recipient, &d.Template, &d.Subject, &d.Channel, &d.Status, &d.Error, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
