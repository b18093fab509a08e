package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/pkg/outbox"
)

type PlanRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewPlanRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{db: db, outbox: outboxRepo, logger: logger}
}

// CreateWithTasks persists a plan and its generated tasks in one transaction,
// together with the plan.created outbox event. Either everything commits or
// nothing does.
func (r *PlanRepository) CreateWithTasks(ctx context.Context, plan *model.Plan, tasks []*model.Task) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	planQuery := `
        INSERT INTO plans (id, name, goal, start_date, end_date, created_by,
                           completed_amount, progress, assigned_to, status, version,
                           created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err = tx.Exec(ctx, planQuery,
		plan.ID,
		plan.Name,
		plan.Goal,
		plan.StartDate,
		plan.EndDate,
		plan.CreatedBy,
		plan.CompletedAmount,
		plan.Progress,
		plan.AssignedTo,
		plan.Status,
		plan.Version,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert plan", zap.Error(err), zap.String("plan_id", plan.ID.String()))
		return err
	}

	taskQuery := `
        INSERT INTO tasks (id, title, description, priority, status, due_date,
                           assigned_to, created_by, attachments, todo_checklist,
                           progress, amount, plan_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	batch := &pgx.Batch{}
	for _, t := range tasks {
		batch.Queue(taskQuery,
			t.ID,
			t.Title,
			t.Description,
			t.Priority,
			t.Status,
			t.DueDate,
			t.AssignedTo,
			t.CreatedBy,
			t.Attachments,
			t.TodoChecklist,
			t.Progress,
			t.Amount,
			t.PlanID,
			t.CreatedAt,
			t.UpdatedAt,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range tasks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error("Failed to insert generated task", zap.Error(err), zap.String("plan_id", plan.ID.String()))
			return err
		}
	}
	if err := results.Close(); err != nil {
		return err
	}

	payload := mq.PlanCreatedPayload{
		PlanID:     plan.ID,
		Name:       plan.Name,
		Goal:       plan.Goal,
		StartDate:  plan.StartDate,
		EndDate:    plan.EndDate,
		TaskCount:  len(tasks),
		AssignedTo: plan.AssignedTo,
		CreatedBy:  plan.CreatedBy,
	}
	planID := plan.ID
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "plan", &planID, mq.RoutingKeyPlanCreated, payload); err != nil {
		r.logger.Error("Failed to insert plan.created outbox event", zap.Error(err), zap.String("plan_id", plan.ID.String()))
		return err
	}

	return tx.Commit(ctx)
}

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	query := `
        SELECT id, name, goal, start_date, end_date, created_by,
               completed_amount, progress, assigned_to, status, version,
               created_at, updated_at
        FROM plans
        WHERE id = $1
    `
	var p model.Plan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Goal,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedBy,
		&p.CompletedAmount,
		&p.Progress,
		&p.AssignedTo,
		&p.Status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.Tasks, err = r.taskIDs(ctx, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// taskIDs returns the plan's task ids ordered by due date.
func (r *PlanRepository) taskIDs(ctx context.Context, planID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM tasks WHERE plan_id = $1 ORDER BY due_date`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PlanRepository) List(ctx context.Context, status string) ([]*model.Plan, error) {
	query := `
        SELECT id, name, goal, start_date, end_date, created_by,
               completed_amount, progress, assigned_to, status, version,
               created_at, updated_at
        FROM plans
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*model.Plan{}
	for rows.Next() {
		var p model.Plan
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Goal,
			&p.StartDate,
			&p.EndDate,
			&p.CreatedBy,
			&p.CompletedAmount,
			&p.Progress,
			&p.AssignedTo,
			&p.Status,
			&p.Version,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plans = append(plans, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range plans {
		if p.Tasks, err = r.taskIDs(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *model.Plan) error {
	query := `
        UPDATE plans
        SET name = $2, goal = $3, completed_amount = $4, progress = $5,
            assigned_to = $6, status = $7, version = version + 1, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Name,
		plan.Goal,
		plan.CompletedAmount,
		plan.Progress,
		plan.AssignedTo,
		plan.Status,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateProgress writes the derived fields conditionally on the version the
// caller read. A false return means the version moved (or the plan is gone)
// and the caller should re-read and retry.
func (r *PlanRepository) UpdateProgress(ctx context.Context, id uuid.UUID, completedAmount int64, progress float64, status string, expectedVersion int64) (bool, error) {
	query := `
        UPDATE plans
        SET completed_amount = $2, progress = $3, status = $4,
            version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $5
    `
	result, err := r.db.Exec(ctx, query, id, completedAmount, progress, status, expectedVersion)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *PlanRepository) ReduceGoal(ctx context.Context, id uuid.UUID, amount int64) error {
	query := `
        UPDATE plans
        SET goal = GREATEST(0, goal - $2), version = version + 1, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query, id, amount)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes the plan; tasks go with it through the FK cascade.
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	r.logger.Info("Plan deleted", zap.String("plan_id", id.String()))
	return nil
}

func (r *PlanRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM plans WHERE ($1 = '' OR status = $1)`, status).Scan(&count)
	return count, err
}
