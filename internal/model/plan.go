package model

import (
	"time"

	"github.com/google/uuid"
)

// Plan statuses.
const (
	PlanStatusActive    = "Active"
	PlanStatusCompleted = "Completed"
)

// Plan is a goal-bearing container spanning a date range, decomposed into one
// task per business day. completedAmount and progress are projections over
// the plan's tasks and are recomputed, never written directly by callers.
type Plan struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Goal            int64       `json:"goal"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	CreatedBy       uuid.UUID   `json:"created_by"`
	Tasks           []uuid.UUID `json:"tasks"`
	CompletedAmount int64       `json:"completed_amount"`
	Progress        float64     `json:"progress"`
	AssignedTo      []uuid.UUID `json:"assigned_to"`
	Status          string      `json:"status"`
	Version         int64       `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
