package workflow

import (
	"math"
	"sort"
	"time"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// Catalog is an ordered, read-only view of the stage pipeline
type Catalog struct {
	stages []*entity.Stage
	index  map[int64]int
}

// NewCatalog orders stages by display order, then id
func NewCatalog(stages []*entity.Stage) *Catalog {
	ordered := make([]*entity.Stage, len(stages))
	copy(ordered, stages)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DisplayOrder != ordered[j].DisplayOrder {
			return ordered[i].DisplayOrder < ordered[j].DisplayOrder
		}
		return ordered[i].ID < ordered[j].ID
	})

	index := make(map[int64]int, len(ordered))
	for i, s := range ordered {
		index[s.ID] = i
	}
	return &Catalog{stages: ordered, index: index}
}

// Len returns the number of stages
func (c *Catalog) Len() int {
	return len(c.stages)
}

// Stages returns the ordered stages
func (c *Catalog) Stages() []*entity.Stage {
	return c.stages
}

// First returns the entry stage of the pipeline
func (c *Catalog) First() (*entity.Stage, bool) {
	if len(c.stages) == 0 {
		return nil, false
	}
	return c.stages[0], true
}

// Get returns the stage with the given id
func (c *Catalog) Get(id int64) (*entity.Stage, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.stages[i], true
}

// Position returns the zero-based position of the stage
func (c *Catalog) Position(id int64) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// IsLast returns true if id is the final stage of the pipeline
func (c *Catalog) IsLast(id int64) bool {
	i, ok := c.index[id]
	return ok && i == len(c.stages)-1
}

// ComputeProgress returns round((position+1)/total*100) for a zero-based position
func ComputeProgress(position, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(position+1) / float64(total) * 100))
}

// StagePolicy holds application-level gating options
type StagePolicy struct {
	// StrictMultiple also requires the main lawyer tier before entering a "multiple" stage
	StrictMultiple bool
}

// StageTransition is the computed result of a stage move
type StageTransition struct {
	From     *entity.Stage
	To       *entity.Stage
	Progress int
	Status   entity.TaskStatus
}

// MoveToStage validates a move of task to targetID and computes its outcome.
// The task is not modified; call Apply on the result.
func (p StagePolicy) MoveToStage(task *entity.Task, actor entity.Actor, catalog *Catalog, targetID int64) (*StageTransition, error) {
	target, ok := catalog.Get(targetID)
	if !ok {
		return nil, apperror.NotFound("stage", targetID)
	}

	if err := Authorize(actor, task, RelationParticipant); err != nil {
		return nil, err
	}

	switch target.ApprovalType {
	case entity.ApprovalTypeAdminOnly:
		if !actor.IsAdmin() {
			return nil, apperror.Forbidden("stage %q can only be entered by an administrator", target.Name)
		}
	default:
		if task.ApprovedByAdmin == nil {
			return nil, apperror.PreconditionFailed("stage %q requires administrator approval first", target.Name).
				WithDetail("task_id", task.ID).
				WithDetail("stage_id", target.ID)
		}
		if p.StrictMultiple && target.ApprovalType == entity.ApprovalTypeMultiple && task.ApprovedByMainLawyer == nil {
			return nil, apperror.PreconditionFailed("stage %q requires main lawyer approval first", target.Name).
				WithDetail("task_id", task.ID).
				WithDetail("stage_id", target.ID)
		}
	}

	pos, _ := catalog.Position(targetID)
	stagePhase := StagePhaseActive
	if catalog.IsLast(targetID) {
		stagePhase = StagePhaseFinal
	}

	from, _ := catalog.Get(task.StageID)
	return &StageTransition{
		From:     from,
		To:       target,
		Progress: ComputeProgress(pos, catalog.Len()),
		Status:   ProjectStatus(Phase{Approval: task.ApprovalStatus, Stage: stagePhase}),
	}, nil
}

// Apply writes the transition onto task. CompletedAt is stamped only the first time
// the task reaches completed.
func (t *StageTransition) Apply(task *entity.Task, now time.Time) {
	task.StageID = t.To.ID
	task.Progress = t.Progress
	task.Status = t.Status
	if t.Status == entity.TaskStatusCompleted && task.CompletedAt == nil {
		task.CompletedAt = entity.TimePtr(now)
	}
	task.UpdatedAt = now
}
