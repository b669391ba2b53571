package service

import (
	"context"
	"fmt"

	"github.com/garyjia/lawdesk/internal/application/dispatcher"
	"github.com/garyjia/lawdesk/internal/application/port"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/internal/domain/event"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

const notificationHandlerName = "notification-outbox"

// NotificationService turns workflow events into outbox records. Delivering them is
// left to whatever drains the outbox.
type NotificationService interface {
	// Register subscribes the outbox writer to every workflow event
	Register(d dispatcher.Dispatcher)
	HandleEvent(ctx context.Context, evt *event.Event) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id int64) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
	options
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger, opts ...Option) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		logger:           logger,
		options:          defaultOptions(opts),
	}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeAll(notificationHandlerName, s.HandleEvent)
}

// HandleEvent writes one pending notification per recipient of evt
func (s *notificationServiceImpl) HandleEvent(ctx context.Context, evt *event.Event) error {
	message := notificationMessage(evt)
	if message == "" {
		return nil
	}

	for _, userID := range recipients(evt) {
		n := &entity.Notification{
			UserID:    userID,
			TaskID:    evt.TaskID,
			EventType: evt.Type.String(),
			Message:   message,
			Status:    entity.NotificationStatusPending,
			CreatedAt: s.clock.Now(),
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			return fmt.Errorf("queue notification for user %d: %w", userID, err)
		}
	}
	return nil
}

// ListForUser returns a user's notifications, newest first
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	if limit < 0 {
		return nil, apperror.Validation("limit must not be negative")
	}
	return s.notificationRepo.ListByUser(ctx, userID, limit)
}

// MarkSent flags a notification as delivered
func (s *notificationServiceImpl) MarkSent(ctx context.Context, id int64) error {
	if err := s.notificationRepo.MarkSent(ctx, id, s.clock.Now()); err != nil {
		s.logger.Error("Failed to mark notification sent", "error", err, "notification_id", id)
		return err
	}
	return nil
}

// recipients picks who must hear about evt: the next approver after a sign-off, the
// assignee and creator after a stage move. The actor is never notified of their own action.
func recipients(evt *event.Event) []int64 {
	var ids []int64
	switch evt.Type {
	case event.TypeTaskCreated:
		ids = []int64{evt.GetPayloadInt(event.KeyMainLawyerID), evt.GetPayloadInt(event.KeyAssignedTo)}
	case event.TypeTaskApprovedByAdmin:
		ids = []int64{evt.GetPayloadInt(event.KeyMainLawyerID)}
	case event.TypeTaskApprovedByMainLawyer:
		ids = []int64{evt.GetPayloadInt(event.KeyAssignedTo)}
	case event.TypeTaskApprovedByAssignedLawyer:
		ids = []int64{evt.GetPayloadInt(event.KeyCreatedBy)}
	case event.TypeTaskStageChanged:
		ids = []int64{evt.GetPayloadInt(event.KeyAssignedTo), evt.GetPayloadInt(event.KeyCreatedBy)}
	case event.TypeTaskUpdated, event.TypeTaskFollowUp:
		ids = []int64{evt.GetPayloadInt(event.KeyAssignedTo)}
	case event.TypeTaskDeleted:
		ids = []int64{evt.GetPayloadInt(event.KeyAssignedTo), evt.GetPayloadInt(event.KeyMainLawyerID)}
	}

	actor := evt.GetPayloadInt(event.KeyActorID)
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || id == actor || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func notificationMessage(evt *event.Event) string {
	ref := fmt.Sprintf("%s %q", evt.GetPayloadString(event.KeyTaskCode), evt.GetPayloadString(event.KeyTitle))
	switch evt.Type {
	case event.TypeTaskCreated:
		return fmt.Sprintf("Task %s was opened and awaits administrator approval", ref)
	case event.TypeTaskApprovedByAdmin:
		return fmt.Sprintf("Task %s awaits your approval as main lawyer", ref)
	case event.TypeTaskApprovedByMainLawyer:
		return fmt.Sprintf("Task %s awaits your approval as assigned lawyer", ref)
	case event.TypeTaskApprovedByAssignedLawyer:
		return fmt.Sprintf("Task %s is fully approved", ref)
	case event.TypeTaskStageChanged:
		return fmt.Sprintf("Task %s moved to stage %s (%d%%)", ref,
			evt.GetPayloadString(event.KeyToStage), evt.GetPayloadInt(event.KeyProgress))
	case event.TypeTaskUpdated:
		return fmt.Sprintf("Task %s was updated", ref)
	case event.TypeTaskFollowUp:
		return fmt.Sprintf("Follow-up recorded on task %s: %s", ref, evt.GetPayloadString(event.KeyNotes))
	case event.TypeTaskDeleted:
		return fmt.Sprintf("Task %s was deleted", ref)
	default:
		return ""
	}
}
