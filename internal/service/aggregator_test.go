package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"planboard/internal/apperr"
	"planboard/internal/model"
)

func TestRecomputeMissingPlanIsNoop(t *testing.T) {
	env := newTestEnv(t)

	if err := env.agg.Recompute(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 10)
	tasks := planTasks(t, env, plan.ID)
	completeTask(t, env, actor, tasks[0].ID)

	first, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := env.agg.Recompute(context.Background(), plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.CompletedAmount != first.CompletedAmount || second.Progress != first.Progress || second.Status != first.Status {
		t.Fatalf("projection drifted on repeat: first=%+v second=%+v", first, second)
	}
}

// Progress stays clamped at 100 even when the completed sum exceeds the goal,
// for instance after the goal was edited below already-completed work.
func TestRecomputeClampsProgress(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 10)
	tasks := planTasks(t, env, plan.ID)
	completeTask(t, env, actor, tasks[0].ID) // completedAmount = 2

	if err := env.store.ReduceGoal(context.Background(), plan.ID, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := env.agg.Recompute(context.Background(), plan.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Goal != 1 {
		t.Fatalf("goal = %d, want 1", got.Goal)
	}
	if got.Progress != 100 {
		t.Fatalf("progress = %v, want clamped 100", got.Progress)
	}
	if got.Status != model.PlanStatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, model.PlanStatusCompleted)
	}
}

func TestRecomputeRetriesOnConflict(t *testing.T) {
	env := newTestEnv(t)
	actor := admin()

	plan := mustCreatePlan(t, env, 10)
	tasks := planTasks(t, env, plan.ID)
	completeTask(t, env, actor, tasks[0].ID)

	env.store.failProgressWrites = 1
	if err := env.agg.Recompute(context.Background(), plan.ID); err != nil {
		t.Fatalf("unexpected error after single conflict: %v", err)
	}

	got, err := env.plans.GetByID(context.Background(), plan.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CompletedAmount != 2 {
		t.Fatalf("completedAmount = %d, want 2", got.CompletedAmount)
	}
}

func TestRecomputeGivesUpAfterRepeatedConflicts(t *testing.T) {
	env := newTestEnv(t)

	plan := mustCreatePlan(t, env, 10)

	env.store.failProgressWrites = aggregateMaxAttempts
	if err := env.agg.Recompute(context.Background(), plan.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
}
