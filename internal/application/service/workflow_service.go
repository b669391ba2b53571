package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/domain/event"
	"github.com/garyjia/lawdesk/internal/domain/workflow"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// WorkflowConfig holds the policy knobs of the workflow
type WorkflowConfig struct {
	// DefaultMainLawyerID is tried before the lawyer directory when a task names no main lawyer
	DefaultMainLawyerID int64
	// RootAdminID sees every pending admin approval; 0 means the lowest admin id
	RootAdminID int64
	// StrictMultipleApproval requires the main lawyer tier before entering "multiple" stages
	StrictMultipleApproval bool
	LockStripes            int
}

// CreateTaskInput carries the caller-supplied fields of a new task
type CreateTaskInput struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Priority     entity.Priority `json:"priority"`
	ClientID     int64           `json:"client_id"`
	DepartmentID int64           `json:"department_id"`
	AssignedTo   int64           `json:"assigned_to"`
	MainLawyerID int64           `json:"main_lawyer_id"`
	DueDate      *time.Time      `json:"due_date"`
}

func (in *CreateTaskInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperror.Validation("title is required")
	}
	if in.DepartmentID <= 0 {
		return apperror.Validation("department_id is required")
	}
	if in.ClientID <= 0 {
		return apperror.Validation("client_id is required")
	}
	if in.AssignedTo <= 0 {
		return apperror.Validation("assigned_to is required")
	}
	if in.MainLawyerID < 0 {
		return apperror.Validation("main_lawyer_id must be a positive user id")
	}
	if in.Priority == "" {
		in.Priority = entity.PriorityMedium
	}
	if !in.Priority.IsValid() {
		return apperror.Validation("invalid priority %q", in.Priority)
	}
	return nil
}

// TaskPatch is a partial update; nil fields are left untouched
type TaskPatch struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	Priority     *entity.Priority   `json:"priority"`
	ClientID     *int64             `json:"client_id"`
	DepartmentID *int64             `json:"department_id"`
	AssignedTo   *int64             `json:"assigned_to"`
	MainLawyerID *int64             `json:"main_lawyer_id"`
	Status       *entity.TaskStatus `json:"status"`
	DueDate      *time.Time         `json:"due_date"`
}

func (p *TaskPatch) validate() error {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			return apperror.Validation("title cannot be empty")
		}
		p.Title = &trimmed
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		return apperror.Validation("invalid priority %q", *p.Priority)
	}
	if p.Status != nil && !p.Status.IsValid() {
		return apperror.Validation("invalid status %q", *p.Status)
	}
	for field, v := range map[string]*int64{
		"client_id":      p.ClientID,
		"department_id":  p.DepartmentID,
		"assigned_to":    p.AssignedTo,
		"main_lawyer_id": p.MainLawyerID,
	} {
		if v != nil && *v <= 0 {
			return apperror.Validation("%s must be a positive id", field)
		}
	}
	return nil
}

// WorkflowService orchestrates the task lifecycle
type WorkflowService interface {
	CreateTask(ctx context.Context, input CreateTaskInput, actor entity.Actor) (*entity.Task, error)
	GetTask(ctx context.Context, id int64) (*entity.Task, error)
	ListTasks(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch, actor entity.Actor) (*entity.Task, error)
	ApproveAdmin(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error)
	ApproveMainLawyer(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error)
	ApproveAssignedLawyer(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error)
	MoveToStage(ctx context.Context, id, stageID int64, actor entity.Actor) (*entity.Task, error)
	DeleteTask(ctx context.Context, id int64, actor entity.Actor) error
	ListPendingAdminApprovals(ctx context.Context, actor entity.Actor) ([]*entity.Task, error)
	RecordFollowUp(ctx context.Context, id int64, notes string, actor entity.Actor) (*entity.Task, error)
	ListActivity(ctx context.Context, id int64, actor entity.Actor) ([]*entity.ActivityLog, error)
}

type workflowServiceImpl struct {
	taskRepo     port.TaskRepository
	stageRepo    port.StageRepository
	activityRepo port.ActivityRepository
	userRepo     port.UserRepository
	txManager    port.TransactionManager
	cfg          WorkflowConfig
	policy       workflow.StagePolicy
	locker       *KeyedLocker
	logger       Logger
	options
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	taskRepo port.TaskRepository,
	stageRepo port.StageRepository,
	activityRepo port.ActivityRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	cfg WorkflowConfig,
	logger Logger,
	opts ...Option,
) WorkflowService {
	return &workflowServiceImpl{
		taskRepo:     taskRepo,
		stageRepo:    stageRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		cfg:          cfg,
		policy:       workflow.StagePolicy{StrictMultiple: cfg.StrictMultipleApproval},
		locker:       NewKeyedLocker(cfg.LockStripes),
		logger:       logger,
		options:      defaultOptions(opts),
	}
}

// change describes a committed mutation for the audit log and the event bus
type change struct {
	action  entity.Action
	details map[string]interface{}
	event   event.Type
}

// mutation edits a task loaded inside the transaction. A nil change means nothing
// was modified and nothing is written.
type mutation func(ctx context.Context, task *entity.Task, now time.Time) (*change, error)

type approvalStep func(ctx context.Context, task *entity.Task, actor entity.Actor, now time.Time) error

// CreateTask opens a task at the head of the approval chain and the first stage
func (s *workflowServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput, actor entity.Actor) (*entity.Task, error) {
	task, err := s.createTask(ctx, input, actor)
	if err != nil {
		s.reject(s.logger, "create_task", err)
		return nil, err
	}

	s.logger.Info("Task created", "task_id", task.ID, "task_code", task.TaskCode, "actor_id", actor.ID)
	s.publish(ctx, s.logger, s.taskEvent(event.TypeTaskCreated, task, actor, nil))
	return task, nil
}

func (s *workflowServiceImpl) createTask(ctx context.Context, input CreateTaskInput, actor entity.Actor) (*entity.Task, error) {
	if err := workflow.Authorize(actor, nil, workflow.RelationTaskOpener); err != nil {
		return nil, err
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}

	var task *entity.Task
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.lookupUser(txCtx, "assigned_to", input.AssignedTo); err != nil {
			return err
		}
		mainLawyerID, err := s.resolveMainLawyer(txCtx, input.MainLawyerID)
		if err != nil {
			return err
		}

		catalog, err := s.loadCatalog(txCtx)
		if err != nil {
			return err
		}
		first, ok := catalog.First()
		if !ok {
			return apperror.PreconditionFailed("stage catalog is empty")
		}

		now := s.clock.Now()
		task = &entity.Task{
			Title:        input.Title,
			Description:  input.Description,
			Priority:     input.Priority,
			ClientID:     input.ClientID,
			DepartmentID: input.DepartmentID,
			AssignedTo:   input.AssignedTo,
			MainLawyerID: mainLawyerID,
			CreatedBy:    actor.ID,
			Status:       entity.TaskStatusPending,
			StageID:      first.ID,
			Progress:     0,
			DueDate:      input.DueDate,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		workflow.InitApproval(task)

		if err := s.taskRepo.Create(txCtx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		task.TaskCode = entity.FormatTaskCode(now.Year(), task.ID)
		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return fmt.Errorf("assign task code: %w", err)
		}

		return s.appendActivity(txCtx, task.ID, entity.ActionCreated, actor.ID, map[string]interface{}{
			event.KeyTaskCode:     task.TaskCode,
			event.KeyTitle:        task.Title,
			event.KeyAssignedTo:   task.AssignedTo,
			event.KeyMainLawyerID: task.MainLawyerID,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by ID
func (s *workflowServiceImpl) GetTask(ctx context.Context, id int64) (*entity.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("Failed to get task", "error", err, "task_id", id)
		}
		return nil, err
	}
	return task, nil
}

// ListTasks lists tasks matching filter, newest first
func (s *workflowServiceImpl) ListTasks(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperror.Validation("invalid status filter %q", filter.Status)
	}
	if filter.ApprovalStatus != "" && !filter.ApprovalStatus.IsValid() {
		return nil, apperror.Validation("invalid approval status filter %q", filter.ApprovalStatus)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperror.Validation("limit and offset must not be negative")
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list tasks", "error", err)
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies a partial update. Reassignments go through the approval chain so
// the tiers they invalidate are cleared in the same write.
func (s *workflowServiceImpl) UpdateTask(ctx context.Context, id int64, patch TaskPatch, actor entity.Actor) (*entity.Task, error) {
	if err := patch.validate(); err != nil {
		s.reject(s.logger, "update_task", err)
		return nil, err
	}

	return s.mutate(ctx, "update_task", id, actor, func(txCtx context.Context, task *entity.Task, now time.Time) (*change, error) {
		if err := workflow.Authorize(actor, task, workflow.RelationCreatorOrAdmin); err != nil {
			return nil, err
		}

		changes := map[string]interface{}{}
		record := func(field string, from, to interface{}) {
			changes[field] = map[string]interface{}{"from": from, "to": to}
		}

		if patch.Title != nil && *patch.Title != task.Title {
			record("title", task.Title, *patch.Title)
			task.Title = *patch.Title
		}
		if patch.Description != nil && *patch.Description != task.Description {
			record("description", task.Description, *patch.Description)
			task.Description = *patch.Description
		}
		if patch.Priority != nil && *patch.Priority != task.Priority {
			record("priority", string(task.Priority), string(*patch.Priority))
			task.Priority = *patch.Priority
		}
		if patch.ClientID != nil && *patch.ClientID != task.ClientID {
			record("client_id", task.ClientID, *patch.ClientID)
			task.ClientID = *patch.ClientID
		}
		if patch.DepartmentID != nil && *patch.DepartmentID != task.DepartmentID {
			record("department_id", task.DepartmentID, *patch.DepartmentID)
			task.DepartmentID = *patch.DepartmentID
		}
		if patch.DueDate != nil && (task.DueDate == nil || !task.DueDate.Equal(*patch.DueDate)) {
			record("due_date", task.DueDate, *patch.DueDate)
			task.DueDate = entity.TimePtr(*patch.DueDate)
		}

		approvalBefore := task.ApprovalStatus
		if patch.MainLawyerID != nil && *patch.MainLawyerID != task.MainLawyerID {
			if _, err := s.lookupUser(txCtx, "main_lawyer_id", *patch.MainLawyerID); err != nil {
				return nil, err
			}
			from := task.MainLawyerID
			if err := workflow.ReassignMainLawyer(txCtx, task, actor, *patch.MainLawyerID); err != nil {
				return nil, err
			}
			record("main_lawyer_id", from, task.MainLawyerID)
		}
		if patch.AssignedTo != nil && *patch.AssignedTo != task.AssignedTo {
			if _, err := s.lookupUser(txCtx, "assigned_to", *patch.AssignedTo); err != nil {
				return nil, err
			}
			from := task.AssignedTo
			if err := workflow.ReassignExecutingLawyer(txCtx, task, actor, *patch.AssignedTo); err != nil {
				return nil, err
			}
			record("assigned_to", from, task.AssignedTo)
		}
		if task.ApprovalStatus != approvalBefore {
			record("approval_status", string(approvalBefore), string(task.ApprovalStatus))
		}

		if patch.Status != nil && *patch.Status != task.Status {
			if err := workflow.ValidateStatusWrite(task, *patch.Status); err != nil {
				return nil, err
			}
			record("status", string(task.Status), string(*patch.Status))
			task.Status = *patch.Status
			if task.Status == entity.TaskStatusCompleted && task.CompletedAt == nil {
				task.CompletedAt = entity.TimePtr(now)
			}
		}

		if len(changes) == 0 {
			return nil, nil
		}
		return &change{
			action:  entity.ActionUpdated,
			details: map[string]interface{}{"changes": changes},
			event:   event.TypeTaskUpdated,
		}, nil
	})
}

// ApproveAdmin records the administrator sign-off
func (s *workflowServiceImpl) ApproveAdmin(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error) {
	return s.approve(ctx, "approve_admin", id, actor, workflow.ApproveAdmin,
		entity.ActionApprovedAdmin, event.TypeTaskApprovedByAdmin)
}

// ApproveMainLawyer records the main lawyer sign-off
func (s *workflowServiceImpl) ApproveMainLawyer(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error) {
	return s.approve(ctx, "approve_main_lawyer", id, actor, workflow.ApproveMainLawyer,
		entity.ActionApprovedMainLawyer, event.TypeTaskApprovedByMainLawyer)
}

// ApproveAssignedLawyer records the executing lawyer sign-off and completes the chain
func (s *workflowServiceImpl) ApproveAssignedLawyer(ctx context.Context, id int64, actor entity.Actor) (*entity.Task, error) {
	return s.approve(ctx, "approve_assigned_lawyer", id, actor, workflow.ApproveAssignedLawyer,
		entity.ActionApprovedAssignedLawyer, event.TypeTaskApprovedByAssignedLawyer)
}

func (s *workflowServiceImpl) approve(ctx context.Context, operation string, id int64, actor entity.Actor, step approvalStep, action entity.Action, eventType event.Type) (*entity.Task, error) {
	return s.mutate(ctx, operation, id, actor, func(txCtx context.Context, task *entity.Task, now time.Time) (*change, error) {
		previous := task.ApprovalStatus
		if err := step(txCtx, task, actor, now); err != nil {
			return nil, err
		}
		return &change{
			action: action,
			details: map[string]interface{}{
				"previous_approval_status": string(previous),
				event.KeyApprovalStatus:    string(task.ApprovalStatus),
			},
			event: eventType,
		}, nil
	})
}

// MoveToStage moves a task through the stage pipeline and recomputes progress and status
func (s *workflowServiceImpl) MoveToStage(ctx context.Context, id, stageID int64, actor entity.Actor) (*entity.Task, error) {
	return s.mutate(ctx, "move_to_stage", id, actor, func(txCtx context.Context, task *entity.Task, now time.Time) (*change, error) {
		catalog, err := s.loadCatalog(txCtx)
		if err != nil {
			return nil, err
		}
		transition, err := s.policy.MoveToStage(task, actor, catalog, stageID)
		if err != nil {
			return nil, err
		}

		details := map[string]interface{}{
			"to_stage_id":       transition.To.ID,
			event.KeyToStage:    transition.To.Name,
			"previous_progress": task.Progress,
			event.KeyProgress:   transition.Progress,
			event.KeyStatus:     string(transition.Status),
		}
		if transition.From != nil {
			details["from_stage_id"] = transition.From.ID
			details[event.KeyFromStage] = transition.From.Name
		}

		transition.Apply(task, now)
		return &change{action: entity.ActionStageChanged, details: details, event: event.TypeTaskStageChanged}, nil
	})
}

// DeleteTask removes a task. Its activity history is kept.
func (s *workflowServiceImpl) DeleteTask(ctx context.Context, id int64, actor entity.Actor) error {
	release := s.locker.Lock(id)
	defer release()

	var deleted *entity.Task
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		task, err := s.taskRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := workflow.Authorize(actor, task, workflow.RelationAdmin); err != nil {
			return err
		}
		if err := s.taskRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		deleted = task
		return s.appendActivity(txCtx, id, entity.ActionDeleted, actor.ID, map[string]interface{}{
			event.KeyTaskCode: task.TaskCode,
			event.KeyTitle:    task.Title,
		}, s.clock.Now())
	})
	if err != nil {
		s.reject(s.logger, "delete_task", err)
		return err
	}

	s.logger.Info("Task deleted", "task_id", id, "actor_id", actor.ID)
	s.publish(ctx, s.logger, s.taskEvent(event.TypeTaskDeleted, deleted, actor, nil))
	return nil
}

// ListPendingAdminApprovals returns tasks waiting on an administrator. The root admin
// sees all of them, other admins only those they created.
func (s *workflowServiceImpl) ListPendingAdminApprovals(ctx context.Context, actor entity.Actor) ([]*entity.Task, error) {
	if err := workflow.Authorize(actor, nil, workflow.RelationAdmin); err != nil {
		s.reject(s.logger, "list_pending_admin", err)
		return nil, err
	}

	rootID, err := s.rootAdminID(ctx)
	if err != nil {
		return nil, err
	}

	filter := entity.TaskFilter{ApprovalStatus: entity.ApprovalPendingAdmin}
	if actor.ID != rootID {
		filter.CreatedBy = actor.ID
	}
	return s.taskRepo.List(ctx, filter)
}

// RecordFollowUp stamps the follow-up fields and logs the notes
func (s *workflowServiceImpl) RecordFollowUp(ctx context.Context, id int64, notes string, actor entity.Actor) (*entity.Task, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		err := apperror.Validation("follow-up notes are required")
		s.reject(s.logger, "record_follow_up", err)
		return nil, err
	}

	return s.mutate(ctx, "record_follow_up", id, actor, func(txCtx context.Context, task *entity.Task, now time.Time) (*change, error) {
		if err := workflow.Authorize(actor, task, workflow.RelationCreatorOrAdmin); err != nil {
			return nil, err
		}
		task.LastFollowUpAt = entity.TimePtr(now)
		task.LastFollowUpBy = entity.Int64Ptr(actor.ID)
		task.LastFollowUpNotes = notes
		return &change{
			action:  entity.ActionFollowUp,
			details: map[string]interface{}{event.KeyNotes: notes},
			event:   event.TypeTaskFollowUp,
		}, nil
	})
}

// ListActivity returns the audit trail of a task, oldest first. Participants may read
// the trail of a live task; admins may also read the trail of a deleted one.
func (s *workflowServiceImpl) ListActivity(ctx context.Context, id int64, actor entity.Actor) ([]*entity.ActivityLog, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	switch {
	case err == nil:
		if err := workflow.Authorize(actor, task, workflow.RelationParticipant); err != nil {
			return nil, err
		}
	case errors.Is(err, apperror.ErrNotFound) && actor.IsAdmin():
	default:
		return nil, err
	}

	entries, err := s.activityRepo.ListByTaskID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list activity", "error", err, "task_id", id)
		return nil, err
	}
	if task == nil && len(entries) == 0 {
		return nil, apperror.NotFound("task", id)
	}
	return entries, nil
}

// mutate runs fn under the task's lock inside a transaction. The task is re-read
// inside the transaction, so a caller that lost the race sees the winner's state.
func (s *workflowServiceImpl) mutate(ctx context.Context, operation string, id int64, actor entity.Actor, fn mutation) (*entity.Task, error) {
	release := s.locker.Lock(id)
	defer release()

	var (
		result  *entity.Task
		applied *change
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		task, err := s.taskRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		c, err := fn(txCtx, task, now)
		if err != nil {
			return err
		}
		result = task
		if c == nil {
			return nil
		}

		task.UpdatedAt = now
		if err := s.taskRepo.Update(txCtx, task); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if err := s.appendActivity(txCtx, task.ID, c.action, actor.ID, c.details, now); err != nil {
			return err
		}
		applied = c
		return nil
	})
	if err != nil {
		s.reject(s.logger, operation, err)
		return nil, err
	}

	if applied != nil {
		s.logger.Info("Task changed",
			"operation", operation,
			"task_id", id,
			"actor_id", actor.ID,
			"action", applied.action,
		)
		s.publish(ctx, s.logger, s.taskEvent(applied.event, result, actor, applied.details))
	}
	return result, nil
}

func (s *workflowServiceImpl) appendActivity(ctx context.Context, taskID int64, action entity.Action, userID int64, details map[string]interface{}, now time.Time) error {
	entry := &entity.ActivityLog{
		TaskID:    taskID,
		Action:    action,
		UserID:    userID,
		Details:   details,
		CreatedAt: now,
	}
	if err := s.activityRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append %s activity: %w", action, err)
	}
	return nil
}

func (s *workflowServiceImpl) loadCatalog(ctx context.Context) (*workflow.Catalog, error) {
	stages, err := s.stageRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stage catalog: %w", err)
	}
	active := stages[:0]
	for _, st := range stages {
		if st.IsActive {
			active = append(active, st)
		}
	}
	return workflow.NewCatalog(active), nil
}

// lookupUser verifies that a referenced user exists. A missing user is the caller's
// input error, not a missing resource.
func (s *workflowServiceImpl) lookupUser(ctx context.Context, field string, id int64) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Validation("%s refers to unknown user %d", field, id)
		}
		return nil, fmt.Errorf("lookup %s: %w", field, err)
	}
	return user, nil
}

// resolveMainLawyer picks the senior approver of a new task: the explicit id, then the
// configured default, then the first lawyer flagged as main, then the first lawyer.
func (s *workflowServiceImpl) resolveMainLawyer(ctx context.Context, explicit int64) (int64, error) {
	if explicit > 0 {
		if _, err := s.lookupUser(ctx, "main_lawyer_id", explicit); err != nil {
			return 0, err
		}
		return explicit, nil
	}

	if s.cfg.DefaultMainLawyerID > 0 {
		_, err := s.userRepo.GetByID(ctx, s.cfg.DefaultMainLawyerID)
		if err == nil {
			return s.cfg.DefaultMainLawyerID, nil
		}
		if !errors.Is(err, apperror.ErrNotFound) {
			return 0, fmt.Errorf("lookup default main lawyer: %w", err)
		}
		s.logger.Error("Configured default main lawyer does not exist", "user_id", s.cfg.DefaultMainLawyerID)
	}

	lawyers, err := s.userRepo.ListByRole(ctx, entity.RoleLawyer)
	if err != nil {
		return 0, fmt.Errorf("list lawyers: %w", err)
	}
	for _, l := range lawyers {
		if l.IsMainLawyer {
			return l.ID, nil
		}
	}
	if len(lawyers) > 0 {
		return lawyers[0].ID, nil
	}
	return 0, apperror.Validation("no main lawyer given and no lawyer available to default to")
}

func (s *workflowServiceImpl) rootAdminID(ctx context.Context) (int64, error) {
	if s.cfg.RootAdminID > 0 {
		return s.cfg.RootAdminID, nil
	}
	admins, err := s.userRepo.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return 0, fmt.Errorf("list admins: %w", err)
	}
	if len(admins) == 0 {
		return 0, nil
	}
	return admins[0].ID, nil
}

func (s *workflowServiceImpl) taskEvent(eventType event.Type, task *entity.Task, actor entity.Actor, details map[string]interface{}) *event.Event {
	payload := map[string]interface{}{
		event.KeyActorID:        actor.ID,
		event.KeyTaskCode:       task.TaskCode,
		event.KeyTitle:          task.Title,
		event.KeyCreatedBy:      task.CreatedBy,
		event.KeyAssignedTo:     task.AssignedTo,
		event.KeyMainLawyerID:   task.MainLawyerID,
		event.KeyApprovalStatus: string(task.ApprovalStatus),
		event.KeyStatus:         string(task.Status),
		event.KeyProgress:       task.Progress,
	}
	for k, v := range details {
		if _, taken := payload[k]; !taken {
			payload[k] = v
		}
	}
	return event.NewEvent(eventType, task.ID, payload)
}
