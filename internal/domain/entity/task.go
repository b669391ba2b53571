package entity

import (
	"fmt"
	"time"
)

// Task is a unit of legal work moving through the approval chain and the stage pipeline.
//
// Approval fields are consistent with ApprovalStatus: exactly the tiers ranked before
// the current status carry an approver and a timestamp, all later tiers are nil.
type Task struct {
	ID          int64    `json:"id"`
	TaskCode    string   `json:"task_code"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`

	ClientID     int64 `json:"client_id"`
	DepartmentID int64 `json:"department_id"`

	// Assignment
	AssignedTo           int64  `json:"assigned_to"`
	MainLawyerID         int64  `json:"main_lawyer_id"`
	CreatedBy            int64  `json:"created_by"`
	MainLawyerAssignedBy *int64 `json:"main_lawyer_assigned_by,omitempty"`

	Status TaskStatus `json:"status"`

	// Approval chain
	ApprovalStatus           ApprovalStatus `json:"approval_status"`
	ApprovedByAdmin          *int64         `json:"approved_by_admin,omitempty"`
	AdminApprovedAt          *time.Time     `json:"admin_approved_at,omitempty"`
	ApprovedByMainLawyer     *int64         `json:"approved_by_main_lawyer,omitempty"`
	MainLawyerApprovedAt     *time.Time     `json:"main_lawyer_approved_at,omitempty"`
	ApprovedByAssignedLawyer *int64         `json:"approved_by_assigned_lawyer,omitempty"`
	AssignedLawyerApprovedAt *time.Time     `json:"assigned_lawyer_approved_at,omitempty"`

	// Stage pipeline
	StageID  int64 `json:"stage_id"`
	Progress int   `json:"progress"`

	// Follow-up stamp
	LastFollowUpAt    *time.Time `json:"last_follow_up_at,omitempty"`
	LastFollowUpBy    *int64     `json:"last_follow_up_by,omitempty"`
	LastFollowUpNotes string     `json:"last_follow_up_notes,omitempty"`

	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FormatTaskCode renders the persisted task code, e.g. TSK-2024-007
func FormatTaskCode(year int, id int64) string {
	return fmt.Sprintf("TSK-%04d-%03d", year, id)
}

// Clone returns a deep copy of the task
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.MainLawyerAssignedBy = cloneID(t.MainLawyerAssignedBy)
	c.ApprovedByAdmin = cloneID(t.ApprovedByAdmin)
	c.AdminApprovedAt = cloneTime(t.AdminApprovedAt)
	c.ApprovedByMainLawyer = cloneID(t.ApprovedByMainLawyer)
	c.MainLawyerApprovedAt = cloneTime(t.MainLawyerApprovedAt)
	c.ApprovedByAssignedLawyer = cloneID(t.ApprovedByAssignedLawyer)
	c.AssignedLawyerApprovedAt = cloneTime(t.AssignedLawyerApprovedAt)
	c.LastFollowUpAt = cloneTime(t.LastFollowUpAt)
	c.LastFollowUpBy = cloneID(t.LastFollowUpBy)
	c.DueDate = cloneTime(t.DueDate)
	c.CompletedAt = cloneTime(t.CompletedAt)
	return &c
}

// TaskFilter narrows task listings
type TaskFilter struct {
	Status         TaskStatus
	ApprovalStatus ApprovalStatus
	DepartmentID   int64
	AssignedTo     int64
	CreatedBy      int64
	StageID        int64
	Limit          int
	Offset         int
}

// Matches reports whether t satisfies every non-zero criterion of f
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ApprovalStatus != "" && t.ApprovalStatus != f.ApprovalStatus {
		return false
	}
	if f.DepartmentID != 0 && t.DepartmentID != f.DepartmentID {
		return false
	}
	if f.AssignedTo != 0 && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.CreatedBy != 0 && t.CreatedBy != f.CreatedBy {
		return false
	}
	if f.StageID != 0 && t.StageID != f.StageID {
		return false
	}
	return true
}

func cloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

// TimePtr returns a pointer to v
func TimePtr(v time.Time) *time.Time {
	return &v
}
