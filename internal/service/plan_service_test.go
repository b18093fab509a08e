package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/apperr"
	"planboard/internal/model"
)

type testEnv struct {
	store     *memStore
	publisher *fakePublisher
	plans     *PlanService
	tasks     *TaskService
	agg       *Aggregator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newMemStore()
	pub := &fakePublisher{}
	logger := zap.NewNop()

	taskStore := taskStoreAdapter{store}
	agg := NewAggregator(store, taskStore, pub, logger)
	return &testEnv{
		store:     store,
		publisher: pub,
		plans:     NewPlanService(store, taskStore, agg, logger),
		tasks:     NewTaskService(taskStore, store, agg, pub, logger),
		agg:       agg,
	}
}

// date returns midnight UTC on the given day.
func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func admin() Actor {
	return Actor{ID: uuid.New(), Role: "admin"}
}

// mustCreatePlan materializes a plan from Monday 2026-03-02 through Friday
// 2026-03-06 (five business days) with the given goal.
func mustCreatePlan(t *testing.T, env *testEnv, goal int64, assignees ...uuid.UUID) *model.Plan {
	t.Helper()

	if len(assignees) == 0 {
		assignees = []uuid.UUID{uuid.New()}
	}
	plan, err := env.plans.Create(context.Background(), CreatePlanInput{
		Name:       "Q1 onboarding",
		Goal:       goal,
		StartDate:  date(2026, time.March, 2),
		EndDate:    date(2026, time.March, 6),
		AssignedTo: assignees,
		CreatedBy:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return plan
}

func planTasks(t *testing.T, env *testEnv, planID uuid.UUID) []*model.Task {
	t.Helper()

	tasks, err := env.store.ListByPlan(context.Background(), planID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tasks
}

func completeTask(t *testing.T, env *testEnv, actor Actor, taskID uuid.UUID) {
	t.Helper()

	if _, err := env.tasks.UpdateStatus(context.Background(), taskID, model.TaskStatusCompleted, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreatePlanMaterializesBusinessDays(t *testing.T) {
	env := newTestEnv(t)
	assignee := uuid.New()

	plan := mustCreatePlan(t, env, 10, assignee)

	if plan.Status != model.PlanStatusActive {
		t.Fatalf("status = %q, want %q", plan.Status, model.PlanStatusActive)
	}
	if plan.Progress != 0 {
		t.Fatalf("progress = %v, want 0", plan.Progress)
	}
	if len(plan.Tasks) != 5 {
		t.Fatalf("got %d task ids, want 5", len(plan.Tasks))
	}

	tasks := planTasks(t, env, plan.ID)
	if len(tasks) != 5 {
		t.Fatalf("got %d tasks, want 5", len(tasks))
	}
	for i, task := range tasks {
		if task.Amount != 2 {
			t.Errorf("task %d amount = %d, want 2", i, task.Amount)
		}
		if task.Status != model.TaskStatusPending {
			t.Errorf("task %d status = %q, want %q", i, task.Status, model.TaskStatusPending)
		}
		if task.Priority != model.PriorityMedium {
			t.Errorf("task %d priority = %q, want %q", i, task.Priority, model.PriorityMedium)
		}
		if len(task.AssignedTo) != 1 || task.AssignedTo[0] != assignee {
			t.Errorf("task %d assignees = %v, want [%v]", i, task.AssignedTo, assignee)
		}
		if len(task.TodoChecklist) != 3 {
			t.Errorf("task %d checklist has %d items, want 3", i, len(task.TodoChecklist))
		}
		wantDue := date(2026, time.March, 2+i)
		if !task.DueDate.Equal(wantDue) {
			t.Errorf("task %d due %v, want %v", i, task.DueDate, wantDue)
		}
	}
}

func TestCreatePlanFrontLoadsRemainder(t *testing.T) {
	env := newTestEnv(t)

	plan := mustCreatePlan(t, env, 7)

	tasks := planTasks(t, env, plan.ID)
	want := []int64{2, 2, 1, 1, 1}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	var sum int64
	for i, task := range tasks {
		if task.Amount != want[i] {
			t.Errorf("task %d amount = %d, want %d", i, task.Amount, want[i])
		}
		sum += task.Amount
	}
	if sum != 7 {
		t.Fatalf("amounts sum to %d, want 7", sum)
	}
}

func TestCreatePlanWeekendOnlyFails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.plans.Create(context.Background(), CreatePlanInput{
		Name:       "weekend sprint",
		Goal:       5,
		StartDate:  date(2026, time.March, 7), // Saturday
		EndDate:    date(2026, time.March, 8), // Sunday
		AssignedTo: []uuid.UUID{uuid.New()},
		CreatedBy:  uuid.New(),
	})
	if !apperr.IsNoBusinessDays(err) {
		t.Fatalf("got %v, want NoBusinessDaysError", err)
	}

	if n, _ := env.store.CountByStatus(context.Background(), ""); n != 0 {
		t.Fatalf("plan count = %d after rejected create, want 0", n)
	}
	if n, _ := env.store.Count(context.Background(), TaskFilter{}); n != 0 {
		t.Fatalf("task count = %d after rejected create, want 0", n)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	env := newTestEnv(t)
	valid := CreatePlanInput{
		Name:       "ok",
		Goal:       5,
		StartDate:  date(2026, time.March, 2),
		EndDate:    date(2026, time.March, 6),
		AssignedTo: []uuid.UUID{uuid.New()},
		CreatedBy:  uuid.New(),
	}

	cases := []struct {
		name   string
		mutate func(*CreatePlanInput)
	}{
		{"empty name", func(in *CreatePlanInput) { in.Name = "" }},
		{"zero goal", func(in *CreatePlanInput) { in.Goal = 0 }},
		{"negative goal", func(in *CreatePlanInput) { in.Goal = -3 }},
		{"inverted dates", func(in *CreatePlanInput) { in.StartDate, in.EndDate = in.EndDate, in.StartDate }},
		{"no assignees", func(in *CreatePlanInput) { in.AssignedTo = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if _, err := env.plans.Create(context.Background(), in); !apperr.IsValidation(err) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestCompletingAllTasksCompletesPlan(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 10)
	tasks := planTasks(t, env, plan.ID)

	for i, task := range tasks {
		completeTask(t, env, actor, task.ID)

		got, err := env.plans.GetByID(context.Background(), plan.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantAmount := int64(2 * (i + 1))
		if got.CompletedAmount != wantAmount {
			t.Fatalf("after %d completions completedAmount = %d, want %d", i+1, got.CompletedAmount, wantAmount)
		}
	}

	got, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %v, want 100", got.Progress)
	}
	if got.Status != model.PlanStatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, model.PlanStatusCompleted)
	}

	if events := env.publisher.byKey(mq.RoutingKeyPlanCompleted); len(events) != 1 {
		t.Fatalf("plan.completed published %d times, want 1", len(events))
	}
}

func TestPartialCompletionProgress(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 7)
	tasks := planTasks(t, env, plan.ID)

	// First task carries the front-loaded amount 2.
	completeTask(t, env, actor, tasks[0].ID)

	got, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompletedAmount != 2 {
		t.Fatalf("completedAmount = %d, want 2", got.CompletedAmount)
	}
	want := 2.0 / 7.0 * 100
	if math.Abs(got.Progress-want) > 1e-9 {
		t.Fatalf("progress = %v, want %v", got.Progress, want)
	}
	if got.Status != model.PlanStatusActive {
		t.Fatalf("status = %q, want %q", got.Status, model.PlanStatusActive)
	}
	if events := env.publisher.byKey(mq.RoutingKeyPlanCompleted); len(events) != 0 {
		t.Fatalf("plan.completed published %d times, want 0", len(events))
	}
}

func TestUpdatePlanGoalReaggregates(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 10)
	tasks := planTasks(t, env, plan.ID)
	completeTask(t, env, actor, tasks[0].ID) // completedAmount = 2

	newGoal := int64(4)
	got, err := env.plans.Update(context.Background(), plan.ID, UpdatePlanInput{Goal: &newGoal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Goal != 4 {
		t.Fatalf("goal = %d, want 4", got.Goal)
	}
	if got.Progress != 50 {
		t.Fatalf("progress = %v, want 50 after goal shrink", got.Progress)
	}
}

func TestUpdatePlanReassignmentPropagates(t *testing.T) {
	env := newTestEnv(t)

	plan := mustCreatePlan(t, env, 10)
	replacement := []uuid.UUID{uuid.New(), uuid.New()}

	if _, err := env.plans.Update(context.Background(), plan.ID, UpdatePlanInput{AssignedTo: replacement}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, task := range planTasks(t, env, plan.ID) {
		if len(task.AssignedTo) != 2 {
			t.Fatalf("task %d has %d assignees, want 2", i, len(task.AssignedTo))
		}
		for j := range replacement {
			if task.AssignedTo[j] != replacement[j] {
				t.Fatalf("task %d assignee %d = %v, want %v", i, j, task.AssignedTo[j], replacement[j])
			}
		}
	}
}

func TestManualStatusCompleteForcesProgress(t *testing.T) {
	env := newTestEnv(t)

	plan := mustCreatePlan(t, env, 10)

	got, err := env.plans.UpdateStatus(context.Background(), plan.ID, model.PlanStatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.PlanStatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, model.PlanStatusCompleted)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %v, want 100", got.Progress)
	}

	if _, err := env.plans.UpdateStatus(context.Background(), plan.ID, "Archived"); !apperr.IsValidation(err) {
		t.Fatalf("got %v, want validation error for unknown status", err)
	}
}

func TestDeletePlanCascades(t *testing.T) {
	env := newTestEnv(t)

	plan := mustCreatePlan(t, env, 10)

	if err := env.plans.Delete(context.Background(), plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := env.plans.GetByID(context.Background(), plan.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if n, _ := env.store.Count(context.Background(), TaskFilter{}); n != 0 {
		t.Fatalf("task count = %d after cascade delete, want 0", n)
	}

	if err := env.plans.Delete(context.Background(), plan.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete got %v, want ErrNotFound", err)
	}
}

func TestListPlansSummary(t *testing.T) {
	env := newTestEnv(t)

	mustCreatePlan(t, env, 10)
	completed := mustCreatePlan(t, env, 10)
	if _, err := env.plans.UpdateStatus(context.Background(), completed.ID, model.PlanStatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, summary, err := env.plans.List(context.Background(), model.PlanStatusActive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("got %d active plans, want 1", len(active))
	}
	if summary.All != 2 || summary.Active != 1 || summary.Completed != 1 {
		t.Fatalf("summary = %+v, want all=2 active=1 completed=1", summary)
	}
}
