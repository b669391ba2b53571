package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification outbox repository
func NewNotificationRepository(db *sqlite.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create queues a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	if n.Status == "" {
		n.Status = entity.NotificationStatusPending
	}

	query := `
		INSERT INTO notifications (user_id, task_id, event_type, message, status, created_at, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		n.UserID,
		n.TaskID,
		n.EventType,
		n.Message,
		n.Status,
		n.CreatedAt.UTC(),
		nullTime(n.SentAt),
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.Int64("user_id", n.UserID),
			zap.Int64("task_id", n.TaskID),
			zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, task_id, event_type, message, status, created_at, sent_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID, limitOrAll(limit))
	if err != nil {
		r.logger.Error("Failed to list notifications",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*entity.Notification, 0)
	for rows.Next() {
		var n entity.Notification
		var sentAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.EventType, &n.Message, &n.Status, &n.CreatedAt, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.SentAt = timePtr(sentAt)
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// MarkSent records delivery of a notification
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx,
		"UPDATE notifications SET status = ?, sent_at = ? WHERE id = ?",
		entity.NotificationStatusSent, sentAt.UTC(), id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return expectOneRow(result, "notification", id)
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
