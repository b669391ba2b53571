package workflow

import (
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// StagePhase is the coarse position of a task in the stage pipeline
type StagePhase string

const (
	StagePhaseNotStarted StagePhase = "not_started"
	StagePhaseActive     StagePhase = "active"
	StagePhaseFinal      StagePhase = "final"
)

// Phase is the composite workflow state of a task. The approval chain and the stage
// pipeline advance independently; Status is projected from the stage axis only.
type Phase struct {
	Approval entity.ApprovalStatus
	Stage    StagePhase
}

// ProjectStatus derives the lifecycle status from a composite phase
func ProjectStatus(p Phase) entity.TaskStatus {
	switch p.Stage {
	case StagePhaseFinal:
		return entity.TaskStatusCompleted
	case StagePhaseActive:
		return entity.TaskStatusInProgress
	default:
		return entity.TaskStatusPending
	}
}

// PhaseOf computes the composite phase of task against catalog. A task that has never
// been moved (progress 0) has not started, whatever stage it sits on.
func PhaseOf(task *entity.Task, catalog *Catalog) Phase {
	p := Phase{Approval: task.ApprovalStatus, Stage: StagePhaseNotStarted}
	if task.Progress == 0 {
		return p
	}
	if catalog != nil && catalog.IsLast(task.StageID) {
		p.Stage = StagePhaseFinal
	} else {
		p.Stage = StagePhaseActive
	}
	return p
}

// ValidateStatusWrite checks a direct status change requested by an update.
// Returning to pending is always allowed; anything else needs a fully approved chain.
func ValidateStatusWrite(task *entity.Task, target entity.TaskStatus) error {
	if !target.IsValid() {
		return apperror.Validation("unknown status %q", target)
	}
	if target == entity.TaskStatusPending || target == task.Status {
		return nil
	}
	if task.ApprovalStatus != entity.ApprovalApproved {
		return apperror.IllegalState("task %d cannot become %s before approval completes (approval status %s)",
			task.ID, target, task.ApprovalStatus)
	}
	return nil
}
