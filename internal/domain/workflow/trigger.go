package workflow

// Trigger represents an action that can move the approval chain
type Trigger string

const (
	TriggerApproveAdmin          Trigger = "APPROVE_ADMIN"
	TriggerApproveMainLawyer     Trigger = "APPROVE_MAIN_LAWYER"
	TriggerApproveAssignedLawyer Trigger = "APPROVE_ASSIGNED_LAWYER"
	TriggerReassignMainLawyer    Trigger = "REASSIGN_MAIN_LAWYER"
	TriggerReassignExecuting     Trigger = "REASSIGN_EXECUTING_LAWYER"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
