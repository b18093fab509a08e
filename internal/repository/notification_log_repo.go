package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"planboard/internal/model"
)

type NotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, log *model.NotificationLog) error {
	query := `
        INSERT INTO notifications_log (user_id, entity_type, entity_id, message, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `
	_, err := r.db.Exec(ctx, query, log.UserID, log.EntityType, log.EntityID, log.Message)
	return err
}

// ListByUser returns the newest notifications for a user.
func (r *NotificationLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.NotificationLog, error) {
	query := `
        SELECT id, user_id, entity_type, entity_id, message, created_at
        FROM notifications_log
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.NotificationLog{}
	for rows.Next() {
		var l model.NotificationLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.EntityType, &l.EntityID, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
