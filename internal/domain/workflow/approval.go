package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/apperror"
)

// InitApproval puts a new task at the head of the chain with every tier empty
func InitApproval(task *entity.Task) {
	task.ApprovalStatus = entity.ApprovalPendingAdmin
	task.ApprovedByAdmin = nil
	task.AdminApprovedAt = nil
	task.ApprovedByMainLawyer = nil
	task.MainLawyerApprovedAt = nil
	task.ApprovedByAssignedLawyer = nil
	task.AssignedLawyerApprovedAt = nil
}

// BuildApprovalStateMachine configures the approval chain for task. Reassignment guards
// read the task's recorded tiers, so the machine must not outlive the call that built it.
func BuildApprovalStateMachine(task *entity.Task) StateMachine {
	adminRecorded := func(context.Context) bool { return task.ApprovedByAdmin != nil }
	adminMissing := func(context.Context) bool { return task.ApprovedByAdmin == nil }

	builder := NewBuilder()

	builder.Configure(StatePendingAdmin).
		Permit(TriggerApproveAdmin, StatePendingMainLawyer).
		Permit(TriggerReassignExecuting, StatePendingAdmin)

	builder.Configure(StatePendingMainLawyer).
		Permit(TriggerApproveMainLawyer, StatePendingAssignedLawyer).
		Permit(TriggerReassignExecuting, StatePendingMainLawyer)

	builder.Configure(StatePendingAssignedLawyer).
		Permit(TriggerApproveAssignedLawyer, StateApproved).
		Permit(TriggerReassignExecuting, StatePendingAssignedLawyer)

	builder.Configure(StateApproved).
		Permit(TriggerReassignExecuting, StatePendingAssignedLawyer)

	// Changing the senior approver drops everything downstream of it, never the admin tier.
	for _, s := range []State{StatePendingAdmin, StatePendingMainLawyer, StatePendingAssignedLawyer, StateApproved} {
		builder.Configure(s).
			PermitIf(TriggerReassignMainLawyer, StatePendingMainLawyer, adminRecorded).
			PermitIf(TriggerReassignMainLawyer, StatePendingAdmin, adminMissing)
	}

	return builder.Build(State(task.ApprovalStatus))
}

// ApproveAdmin records the administrator tier
func ApproveAdmin(ctx context.Context, task *entity.Task, actor entity.Actor, now time.Time) error {
	return approve(ctx, task, actor, TriggerApproveAdmin, RelationCreatorOrAdmin, func() {
		task.ApprovedByAdmin = entity.Int64Ptr(actor.ID)
		task.AdminApprovedAt = entity.TimePtr(now)
	})
}

// ApproveMainLawyer records the main lawyer tier
func ApproveMainLawyer(ctx context.Context, task *entity.Task, actor entity.Actor, now time.Time) error {
	return approve(ctx, task, actor, TriggerApproveMainLawyer, RelationMainLawyer, func() {
		task.ApprovedByMainLawyer = entity.Int64Ptr(actor.ID)
		task.MainLawyerApprovedAt = entity.TimePtr(now)
	})
}

// ApproveAssignedLawyer records the final tier, completing the chain
func ApproveAssignedLawyer(ctx context.Context, task *entity.Task, actor entity.Actor, now time.Time) error {
	return approve(ctx, task, actor, TriggerApproveAssignedLawyer, RelationAssignedLawyer, func() {
		task.ApprovedByAssignedLawyer = entity.Int64Ptr(actor.ID)
		task.AssignedLawyerApprovedAt = entity.TimePtr(now)
	})
}

// ReassignMainLawyer replaces the senior approver. The main lawyer and assigned lawyer tiers
// are cleared; the admin tier is kept and decides whether the chain resumes at
// pending_main_lawyer or pending_admin.
func ReassignMainLawyer(ctx context.Context, task *entity.Task, actor entity.Actor, newMainLawyerID int64) error {
	if newMainLawyerID <= 0 {
		return apperror.Validation("main_lawyer_id must be a positive user id")
	}
	if err := Authorize(actor, task, RelationAdmin); err != nil {
		return err
	}

	machine, err := machineFor(task)
	if err != nil {
		return err
	}
	if err := machine.Fire(ctx, TriggerReassignMainLawyer); err != nil {
		return apperror.Wrap(err, apperror.CodeIllegalState, "reassign main lawyer")
	}

	task.MainLawyerID = newMainLawyerID
	task.MainLawyerAssignedBy = entity.Int64Ptr(actor.ID)
	clearMainLawyerTier(task)
	clearAssignedLawyerTier(task)
	task.ApprovalStatus = machine.State().ApprovalStatus()
	return nil
}

// ReassignExecutingLawyer replaces the executing lawyer and reopens the final gate.
// A chain that had reached the assigned lawyer tier (or completed) goes back to
// pending_assigned_lawyer; a chain still waiting on an earlier tier keeps its position,
// since the assigned tier is already empty there.
func ReassignExecutingLawyer(ctx context.Context, task *entity.Task, actor entity.Actor, newAssignedTo int64) error {
	if newAssignedTo <= 0 {
		return apperror.Validation("assigned_to must be a positive user id")
	}
	if err := Authorize(actor, task, RelationCreatorOrAdmin); err != nil {
		return err
	}

	machine, err := machineFor(task)
	if err != nil {
		return err
	}
	if err := machine.Fire(ctx, TriggerReassignExecuting); err != nil {
		return apperror.Wrap(err, apperror.CodeIllegalState, "reassign executing lawyer")
	}

	task.AssignedTo = newAssignedTo
	clearAssignedLawyerTier(task)
	task.ApprovalStatus = machine.State().ApprovalStatus()
	return nil
}

// CheckApprovalInvariant verifies that exactly the tiers ranked before the current
// approval status are recorded
func CheckApprovalInvariant(task *entity.Task) error {
	rank := task.ApprovalStatus.Rank()
	if rank < 0 {
		return fmt.Errorf("unknown approval status %q", task.ApprovalStatus)
	}

	tiers := []struct {
		name string
		by   *int64
		at   *time.Time
	}{
		{"admin", task.ApprovedByAdmin, task.AdminApprovedAt},
		{"main_lawyer", task.ApprovedByMainLawyer, task.MainLawyerApprovedAt},
		{"assigned_lawyer", task.ApprovedByAssignedLawyer, task.AssignedLawyerApprovedAt},
	}

	for i, tier := range tiers {
		want := i < rank
		if (tier.by != nil) != want || (tier.at != nil) != want {
			return fmt.Errorf("tier %s inconsistent with approval status %s", tier.name, task.ApprovalStatus)
		}
	}
	return nil
}

func approve(ctx context.Context, task *entity.Task, actor entity.Actor, trigger Trigger, relation Relation, record func()) error {
	machine, err := machineFor(task)
	if err != nil {
		return err
	}
	if !machine.CanFire(ctx, trigger) {
		return apperror.IllegalState("cannot %s while approval status is %s", trigger, task.ApprovalStatus).
			WithDetail("task_id", task.ID)
	}
	if err := Authorize(actor, task, relation); err != nil {
		return err
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return apperror.Wrap(err, apperror.CodeIllegalState, string(trigger))
	}

	record()
	task.ApprovalStatus = machine.State().ApprovalStatus()
	return nil
}

func machineFor(task *entity.Task) (StateMachine, error) {
	if !State(task.ApprovalStatus).IsValid() {
		return nil, apperror.IllegalState("task %d has unknown approval status %q", task.ID, task.ApprovalStatus)
	}
	return BuildApprovalStateMachine(task), nil
}

func clearMainLawyerTier(task *entity.Task) {
	task.ApprovedByMainLawyer = nil
	task.MainLawyerApprovedAt = nil
}

func clearAssignedLawyerTier(task *entity.Task) {
	task.ApprovedByAssignedLawyer = nil
	task.AssignedLawyerApprovedAt = nil
}
