package port

import (
	"context"
	"time"

	"github.com/garyjia/lawdesk/internal/domain/entity"
)

// TaskRepository defines persistence operations for Task.
// GetByID returns an apperror NotFound when the task does not exist.
type TaskRepository interface {
	// Create inserts task and assigns task.ID
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id int64) (*entity.Task, error)
	List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error)
	// Update overwrites every mutable column of an existing task
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id int64) error
	CountByStage(ctx context.Context, stageID int64) (int, error)
}

// StageRepository defines persistence operations for the stage catalog
type StageRepository interface {
	Create(ctx context.Context, stage *entity.Stage) error
	GetByID(ctx context.Context, id int64) (*entity.Stage, error)
	// List returns stages ordered by display order, then id
	List(ctx context.Context) ([]*entity.Stage, error)
	Update(ctx context.Context, stage *entity.Stage) error
	Delete(ctx context.Context, id int64) error
}

// ActivityRepository is the append-only audit log
type ActivityRepository interface {
	Append(ctx context.Context, entry *entity.ActivityLog) error
	// ListByTaskID returns entries oldest first
	ListByTaskID(ctx context.Context, taskID int64) ([]*entity.ActivityLog, error)
}

// UserRepository backs the actor directory
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// ListByRole returns users ordered by id; an empty role lists everyone
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}

// NotificationRepository stores outbox records
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
