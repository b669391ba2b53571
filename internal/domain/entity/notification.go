package entity

import "time"

// Notification is an outbox record asking that a user be told about a task event.
// Delivery is performed elsewhere.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	TaskID    int64      `json:"task_id"`
	EventType string     `json:"event_type"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}
