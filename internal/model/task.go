package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Task statuses.
const (
	TaskStatusPending    = "Pending"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
)

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"` // image / video
}

// Task is one business day's worth of quota within a plan, or a standalone
// task created by an administrator. Progress is derived from the checklist.
type Task struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Priority      string          `json:"priority"`
	Status        string          `json:"status"`
	DueDate       time.Time       `json:"due_date"`
	AssignedTo    []uuid.UUID     `json:"assigned_to"`
	CreatedBy     uuid.UUID       `json:"created_by"`
	Attachments   []Attachment    `json:"attachments"`
	TodoChecklist []ChecklistItem `json:"todo_checklist"`
	Progress      int             `json:"progress"`
	Amount        int64           `json:"amount"`
	PlanID        *uuid.UUID      `json:"plan_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CompletedTodoCount returns how many checklist items are checked off.
func (t *Task) CompletedTodoCount() int {
	count := 0
	for _, item := range t.TodoChecklist {
		if item.Completed {
			count++
		}
	}
	return count
}

// ChecklistProgress derives the task progress percentage from the checklist,
// rounded to the nearest integer. An empty checklist yields 0.
func (t *Task) ChecklistProgress() int {
	total := len(t.TodoChecklist)
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(t.CompletedTodoCount()) / float64(total) * 100))
}
