package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"taskhub/internal/models"
)

const notificationColumns = `id, recipient_id, type, message, COALESCE(resource_id::text, '') AS resource_id, read, created_at`

type pgNotificationRepository struct {
	db *sqlx.DB
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, type, message, resource_id, read, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, $7)`,
		n.ID, n.RecipientID, n.Type, n.Message, n.ResourceID, n.Read, n.CreatedAt,
	)
	return mapError(err, "notification", n.ID)
}

func (r *pgNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.GetContext(ctx, &n, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "notification", id)
	}
	return &n, nil
}

func (r *pgNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`
	if unreadOnly {
		query += ` AND NOT read`
	}
	query += ` ORDER BY created_at DESC, id`

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, recipientID); err != nil {
		return nil, mapError(err, "notification", "")
	}
	return notifications, nil
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "notification", id)
	}
	return expectOne(res, "notification", id)
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`, recipientID)
	if err != nil {
		return 0, mapError(err, "notification", "")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *pgNotificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "notification", id)
	}
	return expectOne(res, "notification", id)
}
