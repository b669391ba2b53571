package entity

import "time"

// Stage is one rung of the work pipeline. DisplayOrder defines its position.
type Stage struct {
	ID           int64        `json:"id"`
	DisplayOrder int          `json:"display_order"`
	Name         string       `json:"name"`
	ApprovalType ApprovalType `json:"approval_type"`

	// Metadata owned by administrators; not consulted by transitions
	Description  string `json:"description,omitempty"`
	Requirements string `json:"requirements,omitempty"`
	Color        string `json:"color,omitempty"`
	IsActive     bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
