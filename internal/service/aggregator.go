package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/pkg/metrics"
)

// aggregateMaxAttempts bounds retries when the conditional write loses an
// optimistic-concurrency race against another aggregation.
const aggregateMaxAttempts = 3

// Aggregator recomputes a plan's derived fields (completedAmount, progress,
// status) from the current state of its tasks. It is invoked after every
// task mutation that can affect completion and after goal edits.
type Aggregator struct {
	plans     PlanStore
	tasks     TaskStore
	publisher EventPublisher
	logger    *zap.Logger
}

func NewAggregator(plans PlanStore, tasks TaskStore, publisher EventPublisher, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		plans:     plans,
		tasks:     tasks,
		publisher: publisher,
		logger:    logger,
	}
}

// Recompute reads the plan and its tasks, derives the projection and writes
// it back conditionally on the plan version it read, retrying the whole
// cycle on conflict. A missing plan is a benign no-op: the caller already
// removed it. The operation is idempotent.
func (a *Aggregator) Recompute(ctx context.Context, planID uuid.UUID) error {
	start := time.Now()
	defer func() {
		metrics.PlanAggregationDuration.Observe(time.Since(start).Seconds())
	}()

	for attempt := 1; attempt <= aggregateMaxAttempts; attempt++ {
		plan, err := a.plans.GetByID(ctx, planID)
		if errors.Is(err, apperr.ErrNotFound) {
			a.logger.Debug("Aggregation skipped, plan no longer exists",
				zap.String("plan_id", planID.String()),
			)
			return nil
		}
		if err != nil {
			return err
		}

		tasks, err := a.tasks.ListByPlan(ctx, planID)
		if err != nil {
			return err
		}

		var completedAmount int64
		for _, t := range tasks {
			if t.Status == model.TaskStatusCompleted {
				completedAmount += t.Amount
			}
		}

		progress := 0.0
		if plan.Goal > 0 {
			progress = math.Min(float64(completedAmount)/float64(plan.Goal)*100, 100)
		}

		status := plan.Status
		if completedAmount >= plan.Goal {
			status = model.PlanStatusCompleted
		}

		ok, err := a.plans.UpdateProgress(ctx, planID, completedAmount, progress, status, plan.Version)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil
			}
			return err
		}
		if !ok {
			metrics.PlanAggregationConflicts.Inc()
			a.logger.Warn("Plan aggregation write lost a race, retrying",
				zap.String("plan_id", planID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}

		a.logger.Info("Plan progress recomputed",
			zap.String("plan_id", planID.String()),
			zap.Int64("completed_amount", completedAmount),
			zap.Float64("progress", progress),
			zap.String("status", status),
		)

		if status == model.PlanStatusCompleted && plan.Status != model.PlanStatusCompleted {
			metrics.PlanCompletedCount.Inc()
			a.publishPlanCompleted(plan, completedAmount)
		}

		return nil
	}

	return apperr.ErrConflict
}

func (a *Aggregator) publishPlanCompleted(plan *model.Plan, completedAmount int64) {
	if a.publisher == nil {
		return
	}

	payload := mq.PlanCompletedPayload{
		PlanID:          plan.ID,
		Name:            plan.Name,
		Goal:            plan.Goal,
		CompletedAmount: completedAmount,
		AssignedTo:      plan.AssignedTo,
	}
	if err := a.publisher.Publish(mq.RoutingKeyPlanCompleted, payload); err != nil {
		// The projection is already persisted; losing the notification is
		// not worth failing the mutation over.
		a.logger.Error("Failed to publish plan.completed event",
			zap.String("plan_id", plan.ID.String()),
			zap.Error(err),
		)
	}
}
