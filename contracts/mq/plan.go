package mq

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for plan lifecycle events.
const (
	RoutingKeyPlanCreated   = "plan.created"
	RoutingKeyPlanCompleted = "plan.completed"
)

// PlanCreatedPayload is published transactionally with plan materialization.
type PlanCreatedPayload struct {
	PlanID     uuid.UUID   `json:"plan_id"`
	Name       string      `json:"name"`
	Goal       int64       `json:"goal"`
	StartDate  time.Time   `json:"start_date"`
	EndDate    time.Time   `json:"end_date"`
	TaskCount  int         `json:"task_count"`
	AssignedTo []uuid.UUID `json:"assigned_to"`
	CreatedBy  uuid.UUID   `json:"created_by"`
}

// PlanCompletedPayload is published when aggregation flips a plan to
// Completed.
type PlanCompletedPayload struct {
	PlanID          uuid.UUID   `json:"plan_id"`
	Name            string      `json:"name"`
	Goal            int64       `json:"goal"`
	CompletedAmount int64       `json:"completed_amount"`
	AssignedTo      []uuid.UUID `json:"assigned_to"`
}
