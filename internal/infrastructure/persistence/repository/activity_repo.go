package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
)

// ActivityRepository implements port.ActivityRepository.
// Entries are never updated or deleted.
type ActivityRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewActivityRepository creates a new activity log repository
func NewActivityRepository(db *sqlite.DB, logger *zap.Logger) port.ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes an audit entry and assigns its ID
func (r *ActivityRepository) Append(ctx context.Context, entry *entity.ActivityLog) error {
	details := []byte("{}")
	if len(entry.Details) > 0 {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal activity details: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (task_id, action, user_id, details, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.TaskID,
		entry.Action,
		entry.UserID,
		string(details),
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to append activity",
			zap.Int64("task_id", entry.TaskID),
			zap.String("action", string(entry.Action)),
			zap.Error(err))
		return fmt.Errorf("failed to append activity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByTaskID returns the trail of a task, oldest first
func (r *ActivityRepository) ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ActivityLog, error) {
	query := `
		SELECT id, task_id, action, user_id, details, created_at
		FROM activity_logs
		WHERE task_id = ?
		ORDER BY id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to list activity",
			zap.Int64("task_id", taskID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := make([]*entity.ActivityLog, 0)
	for rows.Next() {
		var entry entity.ActivityLog
		var details string
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.Action, &entry.UserID, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		if details != "" && details != "{}" {
			if err := json.Unmarshal([]byte(details), &entry.Details); err != nil {
				r.logger.Error("Failed to decode activity details",
					zap.Int64("id", entry.ID),
					zap.Error(err))
			}
		}
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.ActivityRepository = (*ActivityRepository)(nil)
