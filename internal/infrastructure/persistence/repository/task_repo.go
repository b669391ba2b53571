package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const taskColumns = `
	id, task_code, title, description, priority,
	client_id, department_id,
	assigned_to, main_lawyer_id, created_by, main_lawyer_assigned_by,
	status, approval_status,
	approved_by_admin, admin_approved_at,
	approved_by_main_lawyer, main_lawyer_approved_at,
	approved_by_assigned_lawyer, assigned_lawyer_approved_at,
	stage_id, progress,
	last_follow_up_at, last_follow_up_by, last_follow_up_notes,
	due_date, completed_at, created_at, updated_at`

// TaskRepository implements port.TaskRepository
type TaskRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlite.DB, logger *zap.Logger) port.TaskRepository {
	return &TaskRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a task and assigns its ID
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	query := `
		INSERT INTO tasks (
			task_code, title, description, priority,
			client_id, department_id,
			assigned_to, main_lawyer_id, created_by, main_lawyer_assigned_by,
			status, approval_status,
			approved_by_admin, admin_approved_at,
			approved_by_main_lawyer, main_lawyer_approved_at,
			approved_by_assigned_lawyer, assigned_lawyer_approved_at,
			stage_id, progress,
			last_follow_up_at, last_follow_up_by, last_follow_up_notes,
			due_date, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		nullString(task.TaskCode),
		task.Title,
		task.Description,
		task.Priority,
		task.ClientID,
		task.DepartmentID,
		task.AssignedTo,
		task.MainLawyerID,
		task.CreatedBy,
		nullInt64(task.MainLawyerAssignedBy),
		task.Status,
		task.ApprovalStatus,
		nullInt64(task.ApprovedByAdmin),
		nullTime(task.AdminApprovedAt),
		nullInt64(task.ApprovedByMainLawyer),
		nullTime(task.MainLawyerApprovedAt),
		nullInt64(task.ApprovedByAssignedLawyer),
		nullTime(task.AssignedLawyerApprovedAt),
		task.StageID,
		task.Progress,
		nullTime(task.LastFollowUpAt),
		nullInt64(task.LastFollowUpBy),
		task.LastFollowUpNotes,
		nullTime(task.DueDate),
		nullTime(task.CompletedAt),
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create task",
			zap.String("title", task.Title),
			zap.Int64("created_by", task.CreatedBy),
			zap.Error(err))
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*entity.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("task", id)
	}
	if err != nil {
		r.logger.Error("Failed to get task by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List returns tasks matching filter, newest first
func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ApprovalStatus != "" {
		conditions = append(conditions, "approval_status = ?")
		args = append(args, filter.ApprovalStatus)
	}
	if filter.DepartmentID != 0 {
		conditions = append(conditions, "department_id = ?")
		args = append(args, filter.DepartmentID)
	}
	if filter.AssignedTo != 0 {
		conditions = append(conditions, "assigned_to = ?")
		args = append(args, filter.AssignedTo)
	}
	if filter.CreatedBy != 0 {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.StageID != 0 {
		conditions = append(conditions, "stage_id = ?")
		args = append(args, filter.StageID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrAll(filter.Limit), filter.Offset)

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*entity.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// Update overwrites every mutable column of a task
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	query := `
		UPDATE tasks SET
			task_code = ?, title = ?, description = ?, priority = ?,
			client_id = ?, department_id = ?,
			assigned_to = ?, main_lawyer_id = ?, main_lawyer_assigned_by = ?,
			status = ?, approval_status = ?,
			approved_by_admin = ?, admin_approved_at = ?,
			approved_by_main_lawyer = ?, main_lawyer_approved_at = ?,
			approved_by_assigned_lawyer = ?, assigned_lawyer_approved_at = ?,
			stage_id = ?, progress = ?,
			last_follow_up_at = ?, last_follow_up_by = ?, last_follow_up_notes = ?,
			due_date = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		nullString(task.TaskCode),
		task.Title,
		task.Description,
		task.Priority,
		task.ClientID,
		task.DepartmentID,
		task.AssignedTo,
		task.MainLawyerID,
		nullInt64(task.MainLawyerAssignedBy),
		task.Status,
		task.ApprovalStatus,
		nullInt64(task.ApprovedByAdmin),
		nullTime(task.AdminApprovedAt),
		nullInt64(task.ApprovedByMainLawyer),
		nullTime(task.MainLawyerApprovedAt),
		nullInt64(task.ApprovedByAssignedLawyer),
		nullTime(task.AssignedLawyerApprovedAt),
		task.StageID,
		task.Progress,
		nullTime(task.LastFollowUpAt),
		nullInt64(task.LastFollowUpBy),
		task.LastFollowUpNotes,
		nullTime(task.DueDate),
		nullTime(task.CompletedAt),
		task.UpdatedAt.UTC(),
		task.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update task",
			zap.Int64("id", task.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update task: %w", err)
	}

	return expectOneRow(result, "task", task.ID)
}

// Delete removes a task. Its activity log is kept.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return expectOneRow(result, "task", id)
}

// CountByStage counts tasks currently sitting on a stage
func (r *TaskRepository) CountByStage(ctx context.Context, stageID int64) (int, error) {
	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE stage_id = ?", stageID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count tasks by stage",
			zap.Int64("stage_id", stageID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// scanTask scans a single task row
func scanTask(row scanner) (*entity.Task, error) {
	var task entity.Task
	var taskCode sql.NullString
	var mainLawyerAssignedBy, approvedByAdmin, approvedByMainLawyer, approvedByAssignedLawyer sql.NullInt64
	var adminApprovedAt, mainLawyerApprovedAt, assignedLawyerApprovedAt sql.NullTime
	var lastFollowUpAt, dueDate, completedAt sql.NullTime
	var lastFollowUpBy sql.NullInt64

	err := row.Scan(
		&task.ID,
		&taskCode,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.ClientID,
		&task.DepartmentID,
		&task.AssignedTo,
		&task.MainLawyerID,
		&task.CreatedBy,
		&mainLawyerAssignedBy,
		&task.Status,
		&task.ApprovalStatus,
		&approvedByAdmin,
		&adminApprovedAt,
		&approvedByMainLawyer,
		&mainLawyerApprovedAt,
		&approvedByAssignedLawyer,
		&assignedLawyerApprovedAt,
		&task.StageID,
		&task.Progress,
		&lastFollowUpAt,
		&lastFollowUpBy,
		&task.LastFollowUpNotes,
		&dueDate,
		&completedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Map nullable fields
	if taskCode.Valid {
		task.TaskCode = taskCode.String
	}
	task.MainLawyerAssignedBy = int64Ptr(mainLawyerAssignedBy)
	task.ApprovedByAdmin = int64Ptr(approvedByAdmin)
	task.AdminApprovedAt = timePtr(adminApprovedAt)
	task.ApprovedByMainLawyer = int64Ptr(approvedByMainLawyer)
	task.MainLawyerApprovedAt = timePtr(mainLawyerApprovedAt)
	task.ApprovedByAssignedLawyer = int64Ptr(approvedByAssignedLawyer)
	task.AssignedLawyerApprovedAt = timePtr(assignedLawyerApprovedAt)
	task.LastFollowUpAt = timePtr(lastFollowUpAt)
	task.LastFollowUpBy = int64Ptr(lastFollowUpBy)
	task.DueDate = timePtr(dueDate)
	task.CompletedAt = timePtr(completedAt)

	return &task, nil
}

func expectOneRow(result sql.Result, resource string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// Verify interface compliance
var _ port.TaskRepository = (*TaskRepository)(nil)
