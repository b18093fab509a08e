package mq

import (
	"github.com/google/uuid"
)

const (
	RoutingKeyTaskCompleted = "task.completed"
)

// TaskCompletedPayload is published when a task reaches Completed status.
type TaskCompletedPayload struct {
	TaskID     uuid.UUID   `json:"task_id"`
	PlanID     *uuid.UUID  `json:"plan_id,omitempty"`
	Title      string      `json:"title"`
	Amount     int64       `json:"amount"`
	AssignedTo []uuid.UUID `json:"assigned_to"`
}
