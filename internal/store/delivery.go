package store

import (
	"context"
	"database/sql"
	"time"
)

// Delivery is one recorded send attempt. Metadata only; the submitted HTML is
// never stored.
type Delivery struct {
	ID        int64     `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"` // "sent", "failed"
	SentAt    time.Time `json:"sent_at"`
}

type DeliveryStore struct {
	db *sql.DB
}

func NewDeliveryStore(db *sql.DB) *DeliveryStore {
	return &DeliveryStore{db: db}
}

// Record inserts one delivery attempt.
func (s *DeliveryStore) Record(ctx context.Context, recipient, subject, filename, status string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (recipient, subject, filename, status, sent_at) VALUES (?, ?, ?, ?, ?)`,
		recipient, subject, filename, status, time.Now().UTC(),
	)
	return err
}

// Recent returns up to limit delivery attempts, newest first.
func (s *DeliveryStore) Recent(ctx context.Context, limit int) ([]Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recipient, subject, filename, status, sent_at
		 FROM deliveries ORDER BY sent_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.Recipient, &d.Subject, &d.Filename, &d.Status, &d.SentAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
