package workflow

import (
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// Relation names the relationship an actor must hold to a task for an operation
type Relation string

const (
	// RelationAdmin requires administrator scope
	RelationAdmin Relation = "admin"
	// RelationCreatorOrAdmin requires the task creator or an administrator
	RelationCreatorOrAdmin Relation = "creator_or_admin"
	// RelationMainLawyer requires the task's senior approver
	RelationMainLawyer Relation = "main_lawyer"
	// RelationAssignedLawyer requires the executing lawyer
	RelationAssignedLawyer Relation = "assigned_lawyer"
	// RelationParticipant accepts admins and anyone named on the task
	RelationParticipant Relation = "participant"
	// RelationTaskOpener is checked before a task exists
	RelationTaskOpener Relation = "task_opener"
)

// Allows reports whether actor holds relation to task. task may be nil only for RelationTaskOpener
// and RelationAdmin.
func Allows(actor entity.Actor, task *entity.Task, relation Relation) bool {
	switch relation {
	case RelationAdmin:
		return actor.IsAdmin()
	case RelationTaskOpener:
		return actor.IsAdmin() || actor.Role == entity.RoleDepartmentHead
	}

	if task == nil {
		return false
	}

	switch relation {
	case RelationCreatorOrAdmin:
		return actor.IsAdmin() || actor.ID == task.CreatedBy
	case RelationMainLawyer:
		return actor.ID == task.MainLawyerID
	case RelationAssignedLawyer:
		return actor.ID == task.AssignedTo
	case RelationParticipant:
		return actor.IsAdmin() ||
			actor.ID == task.CreatedBy ||
			actor.ID == task.MainLawyerID ||
			actor.ID == task.AssignedTo
	default:
		return false
	}
}

// Authorize returns a Forbidden error when actor does not hold relation to task
func Authorize(actor entity.Actor, task *entity.Task, relation Relation) error {
	if Allows(actor, task, relation) {
		return nil
	}
	err := apperror.Forbidden("user %d lacks %s authority", actor.ID, relation)
	if task != nil {
		err.WithDetail("task_id", task.ID)
	}
	return err
}
