package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/pkg/metrics"
	"planboard/pkg/rbac"
)

// Actor identifies who is performing a mutation; the HTTP layer fills it
// from the verified token.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// TaskService handles task-level mutations and keeps the parent plan's
// projection current by invoking the aggregator after any mutation that can
// affect amount-weighted completion.
type TaskService struct {
	tasks      TaskStore
	plans      PlanStore
	aggregator *Aggregator
	publisher  EventPublisher
	logger     *zap.Logger
}

func NewTaskService(tasks TaskStore, plans PlanStore, aggregator *Aggregator, publisher EventPublisher, logger *zap.Logger) *TaskService {
	return &TaskService{
		tasks:      tasks,
		plans:      plans,
		aggregator: aggregator,
		publisher:  publisher,
		logger:     logger,
	}
}

type CreateTaskInput struct {
	Title         string
	Description   string
	Priority      string
	DueDate       time.Time
	Amount        int64
	PlanID        *uuid.UUID
	AssignedTo    []uuid.UUID
	Attachments   []model.Attachment
	TodoChecklist []model.ChecklistItem
	CreatedBy     uuid.UUID
}

// Create adds a single task outside the materializer, optionally linked to a
// plan.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput) (*model.Task, error) {
	if in.Title == "" {
		return nil, apperr.Validationf("title is required")
	}
	if len(in.AssignedTo) == 0 {
		return nil, apperr.Validationf("assignedTo must not be empty")
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}

	if in.PlanID != nil {
		if _, err := s.plans.GetByID(ctx, *in.PlanID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	task := &model.Task{
		ID:            uuid.New(),
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		Status:        model.TaskStatusPending,
		DueDate:       in.DueDate,
		AssignedTo:    in.AssignedTo,
		CreatedBy:     in.CreatedBy,
		Attachments:   in.Attachments,
		TodoChecklist: in.TodoChecklist,
		Amount:        in.Amount,
		PlanID:        in.PlanID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	task.Progress = task.ChecklistProgress()

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	metrics.IncrementTaskGeneration("manual", 1)

	s.logger.Info("Task created",
		zap.String("task_id", task.ID.String()),
		zap.String("title", task.Title),
	)
	return task, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// TaskStatusSummary carries the counts shown next to task listings.
type TaskStatusSummary struct {
	All        int64 `json:"all"`
	Pending    int64 `json:"pending_tasks"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed_tasks"`
}

// List returns tasks visible to the actor (admins see everything, members
// only their assignments) plus status summary counts over the same scope.
func (s *TaskService) List(ctx context.Context, actor Actor, status string) ([]*model.Task, TaskStatusSummary, error) {
	var assignedTo *uuid.UUID
	if actor.Role != rbac.RoleAdmin {
		id := actor.ID
		assignedTo = &id
	}

	tasks, err := s.tasks.List(ctx, TaskFilter{Status: status, AssignedTo: assignedTo})
	if err != nil {
		return nil, TaskStatusSummary{}, err
	}

	summary := TaskStatusSummary{}
	if summary.All, err = s.tasks.Count(ctx, TaskFilter{AssignedTo: assignedTo}); err != nil {
		return nil, TaskStatusSummary{}, err
	}
	if summary.Pending, err = s.tasks.Count(ctx, TaskFilter{Status: model.TaskStatusPending, AssignedTo: assignedTo}); err != nil {
		return nil, TaskStatusSummary{}, err
	}
	if summary.InProgress, err = s.tasks.Count(ctx, TaskFilter{Status: model.TaskStatusInProgress, AssignedTo: assignedTo}); err != nil {
		return nil, TaskStatusSummary{}, err
	}
	if summary.Completed, err = s.tasks.Count(ctx, TaskFilter{Status: model.TaskStatusCompleted, AssignedTo: assignedTo}); err != nil {
		return nil, TaskStatusSummary{}, err
	}

	return tasks, summary, nil
}

type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *string
	Amount        *int64
	DueDate       *time.Time
	TodoChecklist []model.ChecklistItem // nil means unchanged
	Attachments   []model.Attachment    // nil means unchanged
	AssignedTo    []uuid.UUID           // nil means unchanged
}

// Update edits task details. The parent plan is re-aggregated afterwards:
// an amount edit on a Completed task shifts the plan's completed sum.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil && *in.Title != "" {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Priority != nil && *in.Priority != "" {
		task.Priority = *in.Priority
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, apperr.Validationf("amount must not be negative, got %d", *in.Amount)
		}
		task.Amount = *in.Amount
	}
	if in.DueDate != nil {
		task.DueDate = *in.DueDate
	}
	if in.TodoChecklist != nil {
		task.TodoChecklist = in.TodoChecklist
	}
	if in.Attachments != nil {
		task.Attachments = in.Attachments
	}
	if in.AssignedTo != nil {
		if len(in.AssignedTo) == 0 {
			return nil, apperr.Validationf("assignedTo must not be empty")
		}
		task.AssignedTo = in.AssignedTo
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.PlanID != nil {
		if err := s.aggregator.Recompute(ctx, *task.PlanID); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// UpdateStatus applies a direct status change by an assigned member or an
// admin. Completed forces every checklist item done and progress to 100;
// any other status leaves progress derived from the checklist.
func (s *TaskService) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*model.Task, error) {
	if !validTaskStatus(status) {
		return nil, apperr.Validationf("invalid task status %q", status)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(task, actor); err != nil {
		return nil, err
	}

	wasCompleted := task.Status == model.TaskStatusCompleted
	task.Status = status

	if task.Status == model.TaskStatusCompleted {
		for i := range task.TodoChecklist {
			task.TodoChecklist[i].Completed = true
		}
		task.Progress = 100
	} else {
		task.Progress = task.ChecklistProgress()
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task status updated",
		zap.String("task_id", task.ID.String()),
		zap.String("status", task.Status),
	)

	if task.Status == model.TaskStatusCompleted && !wasCompleted {
		s.publishTaskCompleted(task)
	}

	if task.PlanID != nil {
		if err := s.aggregator.Recompute(ctx, *task.PlanID); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// UpdateChecklist replaces the checklist and derives both progress and
// status from it: 100 -> Completed, >0 -> In Progress, otherwise Pending.
// The parent plan is always re-aggregated, whatever the resulting status.
func (s *TaskService) UpdateChecklist(ctx context.Context, id uuid.UUID, items []model.ChecklistItem, actor Actor) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorize(task, actor); err != nil {
		return nil, err
	}

	wasCompleted := task.Status == model.TaskStatusCompleted

	task.TodoChecklist = items
	task.Progress = task.ChecklistProgress()

	switch {
	case task.Progress == 100:
		task.Status = model.TaskStatusCompleted
	case task.Progress > 0:
		task.Status = model.TaskStatusInProgress
	default:
		task.Status = model.TaskStatusPending
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.Status == model.TaskStatusCompleted && !wasCompleted {
		s.publishTaskCompleted(task)
	}

	if task.PlanID != nil {
		if err := s.aggregator.Recompute(ctx, *task.PlanID); err != nil {
			return nil, err
		}
	}

	return task, nil
}

// Delete removes a task. Deleting uncompleted work shrinks the parent
// plan's goal by the task's amount (floored at zero); completed work leaves
// the goal untouched. The plan is re-aggregated against the new goal and
// the reduced task set.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if task.PlanID != nil && task.Status != model.TaskStatusCompleted {
		if err := s.plans.ReduceGoal(ctx, *task.PlanID, task.Amount); err != nil {
			return err
		}
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Task deleted",
		zap.String("task_id", id.String()),
		zap.String("status", task.Status),
		zap.Int64("amount", task.Amount),
	)

	if task.PlanID != nil {
		if err := s.aggregator.Recompute(ctx, *task.PlanID); err != nil {
			return err
		}
	}

	return nil
}

type DashboardStatistics struct {
	TotalTasks     int64 `json:"total_tasks"`
	PendingTasks   int64 `json:"pending_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
}

type DashboardCharts struct {
	TaskDistribution   map[string]int64 `json:"task_distribution"`
	TaskPriorityLevels map[string]int64 `json:"task_priority_levels"`
}

type DashboardData struct {
	Statistics  DashboardStatistics `json:"statistics"`
	Charts      DashboardCharts     `json:"charts"`
	RecentTasks []*model.Task       `json:"recent_tasks"`
}

// Dashboard aggregates counts over every task (admin view).
func (s *TaskService) Dashboard(ctx context.Context) (*DashboardData, error) {
	return s.dashboard(ctx, nil)
}

// UserDashboard aggregates counts over the user's assigned tasks only.
func (s *TaskService) UserDashboard(ctx context.Context, userID uuid.UUID) (*DashboardData, error) {
	return s.dashboard(ctx, &userID)
}

func (s *TaskService) dashboard(ctx context.Context, assignedTo *uuid.UUID) (*DashboardData, error) {
	data := &DashboardData{
		Charts: DashboardCharts{
			TaskDistribution:   make(map[string]int64),
			TaskPriorityLevels: make(map[string]int64),
		},
	}

	var err error
	if data.Statistics.TotalTasks, err = s.tasks.Count(ctx, TaskFilter{AssignedTo: assignedTo}); err != nil {
		return nil, err
	}
	if data.Statistics.PendingTasks, err = s.tasks.Count(ctx, TaskFilter{Status: model.TaskStatusPending, AssignedTo: assignedTo}); err != nil {
		return nil, err
	}
	if data.Statistics.CompletedTasks, err = s.tasks.Count(ctx, TaskFilter{Status: model.TaskStatusCompleted, AssignedTo: assignedTo}); err != nil {
		return nil, err
	}
	if data.Statistics.OverdueTasks, err = s.tasks.CountOverdue(ctx, assignedTo); err != nil {
		return nil, err
	}

	for _, status := range []string{model.TaskStatusPending, model.TaskStatusInProgress, model.TaskStatusCompleted} {
		count, err := s.tasks.Count(ctx, TaskFilter{Status: status, AssignedTo: assignedTo})
		if err != nil {
			return nil, err
		}
		// Response keys drop spaces: "In Progress" -> "InProgress".
		data.Charts.TaskDistribution[strings.ReplaceAll(status, " ", "")] = count
	}
	data.Charts.TaskDistribution["All"] = data.Statistics.TotalTasks

	for _, priority := range []string{model.PriorityLow, model.PriorityMedium, model.PriorityHigh} {
		count, err := s.tasks.Count(ctx, TaskFilter{Priority: priority, AssignedTo: assignedTo})
		if err != nil {
			return nil, err
		}
		data.Charts.TaskPriorityLevels[priority] = count
	}

	if data.RecentTasks, err = s.tasks.ListRecent(ctx, 10, assignedTo); err != nil {
		return nil, err
	}

	return data, nil
}

func (s *TaskService) authorize(task *model.Task, actor Actor) error {
	if actor.Role == rbac.RoleAdmin {
		return nil
	}
	for _, id := range task.AssignedTo {
		if id == actor.ID {
			return nil
		}
	}
	return apperr.ErrForbidden
}

func (s *TaskService) publishTaskCompleted(task *model.Task) {
	if s.publisher == nil {
		return
	}

	payload := mq.TaskCompletedPayload{
		TaskID:     task.ID,
		PlanID:     task.PlanID,
		Title:      task.Title,
		Amount:     task.Amount,
		AssignedTo: task.AssignedTo,
	}
	if err := s.publisher.Publish(mq.RoutingKeyTaskCompleted, payload); err != nil {
		s.logger.Error("Failed to publish task.completed event",
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
	}
}

func validTaskStatus(status string) bool {
	switch status {
	case model.TaskStatusPending, model.TaskStatusInProgress, model.TaskStatusCompleted:
		return true
	}
	return false
}
