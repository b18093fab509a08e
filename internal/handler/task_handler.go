package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/internal/model"
	"planboard/internal/service"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type createTaskRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Priority      string                `json:"priority"`
	DueDate       string                `json:"due_date"`
	Amount        int64                 `json:"amount"`
	PlanID        *uuid.UUID            `json:"plan_id"`
	AssignedTo    []uuid.UUID           `json:"assigned_to"`
	Attachments   []model.Attachment    `json:"attachments"`
	TodoChecklist []model.ChecklistItem `json:"todo_checklist"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	due, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), service.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		DueDate:       due,
		Amount:        req.Amount,
		PlanID:        req.PlanID,
		AssignedTo:    req.AssignedTo,
		Attachments:   req.Attachments,
		TodoChecklist: req.TodoChecklist,
		CreatedBy:     actorFrom(c).ID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	tasks, summary, err := h.tasks.List(c.Request.Context(), actorFrom(c), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":          tasks,
		"status_summary": summary,
	})
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateTaskRequest struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	Priority      *string               `json:"priority"`
	Amount        *int64                `json:"amount"`
	DueDate       *string               `json:"due_date"`
	TodoChecklist []model.ChecklistItem `json:"todo_checklist"`
	Attachments   []model.Attachment    `json:"attachments"`
	AssignedTo    []uuid.UUID           `json:"assigned_to"`
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := service.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		Amount:        req.Amount,
		TodoChecklist: req.TodoChecklist,
		Attachments:   req.Attachments,
		AssignedTo:    req.AssignedTo,
	}
	if req.DueDate != nil {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date"})
			return
		}
		in.DueDate = &due
	}

	task, err := h.tasks.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), id, req.Status, actorFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

type updateChecklistRequest struct {
	TodoChecklist []model.ChecklistItem `json:"todo_checklist"`
}

func (h *TaskHandler) UpdateTaskChecklist(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.tasks.UpdateChecklist(c.Request.Context(), id, req.TodoChecklist, actorFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

// Dashboard serves the admin-wide aggregate view.
func (h *TaskHandler) Dashboard(c *gin.Context) {
	data, err := h.tasks.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// UserDashboard serves the aggregate view scoped to the caller.
func (h *TaskHandler) UserDashboard(c *gin.Context) {
	data, err := h.tasks.UserDashboard(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, data)
}
