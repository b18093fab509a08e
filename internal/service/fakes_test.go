package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"planboard/internal/apperr"
	"planboard/internal/model"
)

// memStore is an in-memory entity store implementing PlanStore and
// TaskStore, used to exercise the engine without a database.
type memStore struct {
	mu    sync.Mutex
	plans map[uuid.UUID]*model.Plan
	tasks map[uuid.UUID]*model.Task

	// failProgressWrites forces the next N conditional progress writes to
	// report a version conflict.
	failProgressWrites int
}

func newMemStore() *memStore {
	return &memStore{
		plans: make(map[uuid.UUID]*model.Plan),
		tasks: make(map[uuid.UUID]*model.Task),
	}
}

func clonePlan(p *model.Plan) *model.Plan {
	cp := *p
	cp.Tasks = append([]uuid.UUID(nil), p.Tasks...)
	cp.AssignedTo = append([]uuid.UUID(nil), p.AssignedTo...)
	return &cp
}

func cloneTask(t *model.Task) *model.Task {
	ct := *t
	ct.AssignedTo = append([]uuid.UUID(nil), t.AssignedTo...)
	ct.TodoChecklist = append([]model.ChecklistItem(nil), t.TodoChecklist...)
	ct.Attachments = append([]model.Attachment(nil), t.Attachments...)
	if t.PlanID != nil {
		id := *t.PlanID
		ct.PlanID = &id
	}
	return &ct
}

func (m *memStore) CreateWithTasks(ctx context.Context, plan *model.Plan, tasks []*model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.plans[plan.ID] = clonePlan(plan)
	for _, t := range tasks {
		m.tasks[t.ID] = cloneTask(t)
	}
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return clonePlan(p), nil
}

func (m *memStore) List(ctx context.Context, status string) ([]*model.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Plan
	for _, p := range m.plans {
		if status == "" || p.Status == status {
			out = append(out, clonePlan(p))
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, plan *model.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.plans[plan.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	cp := clonePlan(plan)
	cp.Version = stored.Version + 1
	m.plans[plan.ID] = cp
	return nil
}

func (m *memStore) UpdateProgress(ctx context.Context, id uuid.UUID, completedAmount int64, progress float64, status string, expectedVersion int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok {
		return false, nil
	}
	if m.failProgressWrites > 0 {
		m.failProgressWrites--
		return false, nil
	}
	if p.Version != expectedVersion {
		return false, nil
	}
	p.CompletedAmount = completedAmount
	p.Progress = progress
	p.Status = status
	p.Version++
	return true, nil
}

func (m *memStore) ReduceGoal(ctx context.Context, id uuid.UUID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.plans[id]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Goal -= amount
	if p.Goal < 0 {
		p.Goal = 0
	}
	p.Version++
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.plans[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(m.plans, id)
	for tid, t := range m.tasks {
		if t.PlanID != nil && *t.PlanID == id {
			delete(m.tasks, tid)
		}
	}
	return nil
}

func (m *memStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, p := range m.plans {
		if status == "" || p.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memStore) Create(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks[t.ID] = cloneTask(t)
	if t.PlanID != nil {
		if p, ok := m.plans[*t.PlanID]; ok {
			p.Tasks = append(p.Tasks, t.ID)
		}
	}
	return nil
}

func (m *memStore) getTask(id uuid.UUID) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return cloneTask(t), nil
}

func (m *memStore) GetTaskByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getTask(id)
}

func (m *memStore) matches(t *model.Task, f TaskFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.AssignedTo != nil {
		assigned := false
		for _, id := range t.AssignedTo {
			if id == *f.AssignedTo {
				assigned = true
				break
			}
		}
		if !assigned {
			return false
		}
	}
	return true
}

func (m *memStore) ListTasks(ctx context.Context, f TaskFilter) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Task
	for _, t := range m.tasks {
		if m.matches(t, f) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *memStore) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.Task
	for _, t := range m.tasks {
		if t.PlanID != nil && *t.PlanID == planID {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (m *memStore) ListRecent(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]*model.Task, error) {
	out, err := m.ListTasks(ctx, TaskFilter{AssignedTo: assignedTo})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpdateTask(ctx context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.tasks[t.ID] = cloneTask(t)
	return nil
}

func (m *memStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return apperr.ErrNotFound
	}
	if t.PlanID != nil {
		if p, ok := m.plans[*t.PlanID]; ok {
			for i, tid := range p.Tasks {
				if tid == id {
					p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
					break
				}
			}
		}
	}
	delete(m.tasks, id)
	return nil
}

func (m *memStore) ReassignByPlan(ctx context.Context, planID uuid.UUID, assignedTo []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if t.PlanID != nil && *t.PlanID == planID {
			t.AssignedTo = append([]uuid.UUID(nil), assignedTo...)
		}
	}
	return nil
}

func (m *memStore) Count(ctx context.Context, f TaskFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, t := range m.tasks {
		if m.matches(t, f) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CountOverdue(ctx context.Context, assignedTo *uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var count int64
	for _, t := range m.tasks {
		if t.Status != model.TaskStatusCompleted && t.DueDate.Before(now) && m.matches(t, TaskFilter{AssignedTo: assignedTo}) {
			count++
		}
	}
	return count, nil
}

// taskStoreAdapter maps the TaskStore method names onto memStore, which
// shares a namespace with PlanStore.
type taskStoreAdapter struct {
	*memStore
}

func (a taskStoreAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return a.memStore.GetTaskByID(ctx, id)
}

func (a taskStoreAdapter) List(ctx context.Context, f TaskFilter) ([]*model.Task, error) {
	return a.memStore.ListTasks(ctx, f)
}

func (a taskStoreAdapter) Update(ctx context.Context, t *model.Task) error {
	return a.memStore.UpdateTask(ctx, t)
}

func (a taskStoreAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return a.memStore.DeleteTask(ctx, id)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	routingKey string
	payload    any
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (f *fakePublisher) byKey(routingKey string) []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []publishedEvent
	for _, e := range f.events {
		if e.routingKey == routingKey {
			out = append(out, e)
		}
	}
	return out
}
