package entity

import "time"

// User is a member of the practice known to the actor directory
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Role         Role      `json:"role"`
	IsMainLawyer bool      `json:"is_main_lawyer"`
	DepartmentID int64     `json:"department_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor returns the authorization identity of the user
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Actor is an already-authenticated caller
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsAdmin returns true if the actor holds administrator scope
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
