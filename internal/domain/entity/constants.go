package entity

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid returns true if p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is the lifecycle status of a task, projected from its stage position
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid returns true if s is a known task status
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ApprovalStatus is the position of a task in the three-tier approval chain
type ApprovalStatus string

const (
	ApprovalPendingAdmin          ApprovalStatus = "pending_admin"
	ApprovalPendingMainLawyer     ApprovalStatus = "pending_main_lawyer"
	ApprovalPendingAssignedLawyer ApprovalStatus = "pending_assigned_lawyer"
	ApprovalApproved              ApprovalStatus = "approved"
)

// approvalRank orders the chain; the rank equals the number of tiers already signed.
var approvalRank = map[ApprovalStatus]int{
	ApprovalPendingAdmin:          0,
	ApprovalPendingMainLawyer:     1,
	ApprovalPendingAssignedLawyer: 2,
	ApprovalApproved:              3,
}

// IsValid returns true if s is a known approval status
func (s ApprovalStatus) IsValid() bool {
	_, ok := approvalRank[s]
	return ok
}

// Rank returns the number of approval tiers recorded before s, or -1 if s is unknown
func (s ApprovalStatus) Rank() int {
	if r, ok := approvalRank[s]; ok {
		return r
	}
	return -1
}

// ApprovalType is the gating policy attached to a stage
type ApprovalType string

const (
	ApprovalTypeAdminOnly ApprovalType = "admin_only"
	ApprovalTypeSingle    ApprovalType = "single"
	ApprovalTypeMultiple  ApprovalType = "multiple"
)

// IsValid returns true if t is a known approval type
func (t ApprovalType) IsValid() bool {
	switch t {
	case ApprovalTypeAdminOnly, ApprovalTypeSingle, ApprovalTypeMultiple:
		return true
	}
	return false
}

// Role is the role held by a user of the practice
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleLawyer         Role = "lawyer"
	RoleDepartmentHead Role = "department_head"
	RoleAssistant      Role = "assistant"
)

// IsValid returns true if r is a recognized role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleLawyer, RoleDepartmentHead, RoleAssistant:
		return true
	}
	return false
}

// Action tags recorded in the activity log
type Action string

const (
	ActionCreated                Action = "created"
	ActionUpdated                Action = "updated"
	ActionApprovedAdmin          Action = "approved_admin"
	ActionApprovedMainLawyer     Action = "approved_main_lawyer"
	ActionApprovedAssignedLawyer Action = "approved_assigned_lawyer"
	ActionStageChanged           Action = "stage_changed"
	ActionDeleted                Action = "deleted"
	ActionFollowUp               Action = "follow_up"
)

// Notification status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)
