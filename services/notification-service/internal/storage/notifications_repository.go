package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"

	"bookly/libs/db"
)

type Notification struct {
	ID            string
	RecipientID   string
	AppointmentID string
	Kind          string
	Title         string
	Body          string
	Payload       map[string]any
	Read          bool
	CreatedAt     time.Time
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notifications (recipient_id, appointment_id, kind, title, body, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.RecipientID, n.AppointmentID, n.Kind, n.Title, n.Body, payload)
	return err
}

// ListByRecipient returns the newest notifications first.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, recipient_id::text, COALESCE(appointment_id::text, ''), kind, title, body, payload, read, created_at
		FROM notifications
		WHERE recipient_id = $1 AND (NOT read OR NOT $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n   Notification
			raw []byte
		)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.AppointmentID, &n.Kind, &n.Title, &n.Body, &raw, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &n.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT read
	`, recipientID).Scan(&n)
	return n, err
}

func (r *Repository) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND recipient_id = $2
	`, notificationID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET read = true
		WHERE recipient_id = $1 AND NOT read
	`, recipientID)
	return err
}
