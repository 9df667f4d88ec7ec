package contracts

import "time"

// TodoEvent is published on the change feed after a successful write.
type TodoEvent struct {
	EventID    string    `json:"event_id"`
	TodoID     string    `json:"todo_id"`
	Action     string    `json:"action"`
	Title      string    `json:"title"`
	IsActive   bool      `json:"is_active"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Subject returns the NATS subject for a change-feed action.
func Subject(action string) string {
	return "todos." + action
}
