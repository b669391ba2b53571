package event

// Type identifies the type of domain event
type Type string

const (
	TypeTaskCreated                  Type = "task.created"
	TypeTaskUpdated                  Type = "task.updated"
	TypeTaskDeleted                  Type = "task.deleted"
	TypeTaskApprovedByAdmin          Type = "task.approved_admin"
	TypeTaskApprovedByMainLawyer     Type = "task.approved_main_lawyer"
	TypeTaskApprovedByAssignedLawyer Type = "task.approved_assigned_lawyer"
	TypeTaskStageChanged             Type = "task.stage_changed"
	TypeTaskFollowUp                 Type = "task.follow_up"
)

// AllTypes lists every event type the workflow emits, in lifecycle order.
var AllTypes = []Type{
	TypeTaskCreated,
	TypeTaskUpdated,
	TypeTaskApprovedByAdmin,
	TypeTaskApprovedByMainLawyer,
	TypeTaskApprovedByAssignedLawyer,
	TypeTaskStageChanged,
	TypeTaskFollowUp,
	TypeTaskDeleted,
}

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}
