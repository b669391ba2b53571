package workflow

import "github.com/garyjia/lawdesk/internal/domain/entity"

// State represents a position in the approval chain
type State string

const (
	StatePendingAdmin          State = State(entity.ApprovalPendingAdmin)
	StatePendingMainLawyer     State = State(entity.ApprovalPendingMainLawyer)
	StatePendingAssignedLawyer State = State(entity.ApprovalPendingAssignedLawyer)
	StateApproved              State = State(entity.ApprovalApproved)
)

var validStates = map[State]bool{
	StatePendingAdmin:          true,
	StatePendingMainLawyer:     true,
	StatePendingAssignedLawyer: true,
	StateApproved:              true,
}

// IsTerminal returns true once every tier has signed off.
// Reassignment can still reopen an approved chain.
func (s State) IsTerminal() bool {
	return s == StateApproved
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid approval state
func (s State) IsValid() bool {
	return validStates[s]
}

// ApprovalStatus converts the state to the persisted task field
func (s State) ApprovalStatus() entity.ApprovalStatus {
	return entity.ApprovalStatus(s)
}
