package entity

import "time"

// ActivityLog is an append-only audit entry. TaskID may refer to a deleted task.
type ActivityLog struct {
	ID        int64                  `json:"id"`
	TaskID    int64                  `json:"task_id"`
	Action    Action                 `json:"action"`
	UserID    int64                  `json:"user_id"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
