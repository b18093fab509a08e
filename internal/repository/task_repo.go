package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planboard/internal/apperr"
	"planboard/internal/model"
	"planboard/internal/service"
)

const taskColumns = `id, title, description, priority, status, due_date,
               assigned_to, created_by, attachments, todo_checklist,
               progress, amount, plan_id, created_at, updated_at`

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.DueDate,
		&t.AssignedTo,
		&t.CreatedBy,
		&t.Attachments,
		&t.TodoChecklist,
		&t.Progress,
		&t.Amount,
		&t.PlanID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) collect(rows pgx.Rows) ([]*model.Task, error) {
	defer rows.Close()

	tasks := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `
        INSERT INTO tasks (id, title, description, priority, status, due_date,
                           assigned_to, created_by, attachments, todo_checklist,
                           progress, amount, plan_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	_, err := r.db.Exec(ctx, query,
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
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err), zap.String("task_id", t.ID.String()))
	}
	return err
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	return t, err
}

func (r *TaskRepository) List(ctx context.Context, f service.TaskFilter) ([]*model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE ($1 = '' OR status = $1)
          AND ($2 = '' OR priority = $2)
          AND ($3::uuid IS NULL OR $3 = ANY(assigned_to))
        ORDER BY due_date
    `
	rows, err := r.db.Query(ctx, query, f.Status, f.Priority, f.AssignedTo)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*model.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE plan_id = $1 ORDER BY due_date`, planID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepository) ListRecent(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]*model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE ($1::uuid IS NULL OR $1 = ANY(assigned_to))
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, assignedTo, limit)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $2, description = $3, priority = $4, status = $5,
            due_date = $6, assigned_to = $7, attachments = $8,
            todo_checklist = $9, progress = $10, amount = $11, updated_at = NOW()
        WHERE id = $1
    `
	result, err := r.db.Exec(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.Priority,
		t.Status,
		t.DueDate,
		t.AssignedTo,
		t.Attachments,
		t.TodoChecklist,
		t.Progress,
		t.Amount,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ReassignByPlan overwrites assigned_to on every task of the plan.
func (r *TaskRepository) ReassignByPlan(ctx context.Context, planID uuid.UUID, assignedTo []uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		`UPDATE tasks SET assigned_to = $2, updated_at = NOW() WHERE plan_id = $1`,
		planID, assignedTo,
	)
	if err != nil {
		return err
	}
	r.logger.Debug("Tasks reassigned",
		zap.String("plan_id", planID.String()),
		zap.Int64("rows_affected", result.RowsAffected()),
	)
	return nil
}

func (r *TaskRepository) Count(ctx context.Context, f service.TaskFilter) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM tasks
        WHERE ($1 = '' OR status = $1)
          AND ($2 = '' OR priority = $2)
          AND ($3::uuid IS NULL OR $3 = ANY(assigned_to))
    `
	var count int64
	err := r.db.QueryRow(ctx, query, f.Status, f.Priority, f.AssignedTo).Scan(&count)
	return count, err
}

func (r *TaskRepository) CountOverdue(ctx context.Context, assignedTo *uuid.UUID) (int64, error) {
	query := `
        SELECT COUNT(*)
        FROM tasks
        WHERE status <> $1
          AND due_date < NOW()
          AND ($2::uuid IS NULL OR $2 = ANY(assigned_to))
    `
	var count int64
	err := r.db.QueryRow(ctx, query, model.TaskStatusCompleted, assignedTo).Scan(&count)
	return count, err
}
