// Package service implements the plan/task engine: plan materialization,
// progress aggregation and task mutations. Storage is reached through the
// interfaces below so the engine can be exercised without a database.
package service

import (
	"context"

	"github.com/google/uuid"

	"planboard/internal/model"
)

// TaskFilter narrows task listings and counts.
type TaskFilter struct {
	Status     string     // empty means any status
	AssignedTo *uuid.UUID // nil means any assignee
	Priority   string     // empty means any priority
}

// PlanStore is the plan side of the entity store.
type PlanStore interface {
	// CreateWithTasks persists a plan and its derived tasks atomically.
	// Either everything commits or nothing does.
	CreateWithTasks(ctx context.Context, plan *model.Plan, tasks []*model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	List(ctx context.Context, status string) ([]*model.Plan, error)
	Update(ctx context.Context, plan *model.Plan) error
	// UpdateProgress writes the derived fields conditionally on the version
	// the caller read. It returns false without error when the version no
	// longer matches (or the plan is gone) so the caller can retry.
	UpdateProgress(ctx context.Context, id uuid.UUID, completedAmount int64, progress float64, status string, expectedVersion int64) (bool, error)
	// ReduceGoal shrinks a plan's goal by amount, floored at zero.
	ReduceGoal(ctx context.Context, id uuid.UUID, amount int64) error
	// Delete removes the plan and cascades to its tasks.
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// TaskStore is the task side of the entity store.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*model.Task, error)
	ListByPlan(ctx context.Context, planID uuid.UUID) ([]*model.Task, error)
	ListRecent(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ReassignByPlan overwrites assigned_to on every task of a plan.
	ReassignByPlan(ctx context.Context, planID uuid.UUID, assignedTo []uuid.UUID) error
	Count(ctx context.Context, f TaskFilter) (int64, error)
	CountOverdue(ctx context.Context, assignedTo *uuid.UUID) (int64, error)
}

// EventPublisher publishes domain events; satisfied by mq.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}
