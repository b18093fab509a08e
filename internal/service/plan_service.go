package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/internal/schedule"
	"planboard/pkg/metrics"
)

// PlanService materializes plans into per-business-day tasks and handles
// plan-level mutations.
type PlanService struct {
	plans      PlanStore
	tasks      TaskStore
	aggregator *Aggregator
	logger     *zap.Logger
}

func NewPlanService(plans PlanStore, tasks TaskStore, aggregator *Aggregator, logger *zap.Logger) *PlanService {
	return &PlanService{
		plans:      plans,
		tasks:      tasks,
		aggregator: aggregator,
		logger:     logger,
	}
}

type CreatePlanInput struct {
	Name            string
	Goal            int64
	StartDate       time.Time
	EndDate         time.Time
	AssignedTo      []uuid.UUID
	CreatedBy       uuid.UUID
	CompletedAmount int64
}

// Create materializes a plan: partitions the date range into business days,
// distributes the goal across them, synthesizes a checklist per day and
// persists the plan with its tasks in one transaction, then runs one
// aggregation pass so the derived fields start consistent.
func (s *PlanService) Create(ctx context.Context, in CreatePlanInput) (*model.Plan, error) {
	if in.Name == "" {
		return nil, apperr.Validationf("name is required")
	}
	if in.Goal <= 0 {
		return nil, apperr.Validationf("goal must be positive, got %d", in.Goal)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Validationf("endDate must not be before startDate")
	}
	if len(in.AssignedTo) == 0 {
		return nil, apperr.Validationf("assignedTo must not be empty")
	}

	days := schedule.BusinessDays(in.StartDate, in.EndDate)
	if len(days) == 0 {
		return nil, &apperr.NoBusinessDaysError{}
	}

	amounts := schedule.DistributeGoal(in.Goal, len(days))

	now := time.Now()
	plan := &model.Plan{
		ID:              uuid.New(),
		Name:            in.Name,
		Goal:            in.Goal,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		CreatedBy:       in.CreatedBy,
		CompletedAmount: in.CompletedAmount,
		AssignedTo:      in.AssignedTo,
		Status:          model.PlanStatusActive,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	tasks := make([]*model.Task, 0, len(days))
	for i, day := range days {
		amount := amounts[i]
		planID := plan.ID
		task := &model.Task{
			ID:            uuid.New(),
			Title:         schedule.TaskTitle(day),
			Description:   schedule.TaskDescription(day, amount),
			Priority:      model.PriorityMedium,
			Status:        model.TaskStatusPending,
			DueDate:       day,
			AssignedTo:    plan.AssignedTo,
			CreatedBy:     in.CreatedBy,
			TodoChecklist: schedule.SynthesizeChecklist(amount),
			Amount:        amount,
			PlanID:        &planID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		tasks = append(tasks, task)
		plan.Tasks = append(plan.Tasks, task.ID)
	}

	if err := s.plans.CreateWithTasks(ctx, plan, tasks); err != nil {
		return nil, err
	}

	metrics.PlanCreatedCount.Inc()
	metrics.IncrementTaskGeneration("plan", len(tasks))

	s.logger.Info("Plan materialized",
		zap.String("plan_id", plan.ID.String()),
		zap.String("name", plan.Name),
		zap.Int64("goal", plan.Goal),
		zap.Int("task_count", len(tasks)),
	)

	// No task is Completed yet, so this only establishes progress=0, but it
	// keeps creation on the same code path as every later mutation.
	if err := s.aggregator.Recompute(ctx, plan.ID); err != nil {
		return nil, err
	}

	return s.plans.GetByID(ctx, plan.ID)
}

func (s *PlanService) GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	return s.plans.GetByID(ctx, id)
}

// PlanStatusSummary carries the counts shown next to plan listings.
type PlanStatusSummary struct {
	All       int64 `json:"all"`
	Active    int64 `json:"active_plans"`
	Completed int64 `json:"completed_plans"`
}

// List returns plans filtered by status plus the status summary counts.
func (s *PlanService) List(ctx context.Context, status string) ([]*model.Plan, PlanStatusSummary, error) {
	plans, err := s.plans.List(ctx, status)
	if err != nil {
		return nil, PlanStatusSummary{}, err
	}

	summary := PlanStatusSummary{}
	if summary.All, err = s.plans.CountByStatus(ctx, ""); err != nil {
		return nil, PlanStatusSummary{}, err
	}
	if summary.Active, err = s.plans.CountByStatus(ctx, model.PlanStatusActive); err != nil {
		return nil, PlanStatusSummary{}, err
	}
	if summary.Completed, err = s.plans.CountByStatus(ctx, model.PlanStatusCompleted); err != nil {
		return nil, PlanStatusSummary{}, err
	}

	return plans, summary, nil
}

type UpdatePlanInput struct {
	Name            *string
	Goal            *int64
	CompletedAmount *int64
	AssignedTo      []uuid.UUID // nil means unchanged
}

// Update edits plan fields. Reassignment overwrites assigned_to on every
// child task; a goal change re-runs aggregation so progress tracks the new
// target immediately.
func (s *PlanService) Update(ctx context.Context, id uuid.UUID, in UpdatePlanInput) (*model.Plan, error) {
	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	goalChanged := false

	if in.Name != nil && *in.Name != "" {
		plan.Name = *in.Name
	}
	if in.Goal != nil {
		if *in.Goal <= 0 {
			return nil, apperr.Validationf("goal must be positive, got %d", *in.Goal)
		}
		if *in.Goal != plan.Goal {
			plan.Goal = *in.Goal
			goalChanged = true
		}
	}
	if in.CompletedAmount != nil {
		plan.CompletedAmount = *in.CompletedAmount
	}

	reassigned := false
	if in.AssignedTo != nil {
		if len(in.AssignedTo) == 0 {
			return nil, apperr.Validationf("assignedTo must not be empty")
		}
		plan.AssignedTo = in.AssignedTo
		reassigned = true
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	if reassigned {
		if err := s.tasks.ReassignByPlan(ctx, plan.ID, plan.AssignedTo); err != nil {
			return nil, err
		}
		s.logger.Info("Plan reassignment propagated to tasks",
			zap.String("plan_id", plan.ID.String()),
			zap.Int("assignee_count", len(plan.AssignedTo)),
		)
	}

	if goalChanged {
		if err := s.aggregator.Recompute(ctx, plan.ID); err != nil {
			return nil, err
		}
	}

	return s.plans.GetByID(ctx, plan.ID)
}

// UpdateStatus applies a manual status change. A manual transition to
// Completed forces progress to 100 regardless of the actual task sums.
func (s *PlanService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Plan, error) {
	if status != model.PlanStatusActive && status != model.PlanStatusCompleted {
		return nil, apperr.Validationf("invalid plan status %q", status)
	}

	plan, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.Status = status
	if plan.Status == model.PlanStatusCompleted {
		plan.Progress = 100
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	s.logger.Info("Plan status updated",
		zap.String("plan_id", plan.ID.String()),
		zap.String("status", plan.Status),
	)

	return plan, nil
}

// Delete removes a plan and cascades to all its tasks. No aggregation
// follows: the plan is gone.
func (s *PlanService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.plans.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.plans.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Plan deleted with task cascade",
		zap.String("plan_id", id.String()),
	)
	return nil
}
