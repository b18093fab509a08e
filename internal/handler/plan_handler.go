package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"planboard/internal/service"
)

type PlanHandler struct {
	plans  *service.PlanService
	logger *zap.Logger
}

func NewPlanHandler(plans *service.PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

type createPlanRequest struct {
	Name            string      `json:"name"`
	Goal            int64       `json:"goal"`
	StartDate       string      `json:"start_date"`
	EndDate         string      `json:"end_date"`
	AssignedTo      []uuid.UUID `json:"assigned_to"`
	CompletedAmount int64       `json:"completed_amount"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req createPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	actor := actorFrom(c)
	h.logger.Info("CreatePlan request received",
		zap.String("name", req.Name),
		zap.Int64("goal", req.Goal),
		zap.String("client_ip", c.ClientIP()),
	)

	plan, err := h.plans.Create(c.Request.Context(), service.CreatePlanInput{
		Name:            req.Name,
		Goal:            req.Goal,
		StartDate:       start,
		EndDate:         end,
		AssignedTo:      req.AssignedTo,
		CreatedBy:       actor.ID,
		CompletedAmount: req.CompletedAmount,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans, summary, err := h.plans.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans":          plans,
		"status_summary": summary,
	})
}

func (h *PlanHandler) GetPlanByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

type updatePlanRequest struct {
	Name            *string     `json:"name"`
	Goal            *int64      `json:"goal"`
	CompletedAmount *int64      `json:"completed_amount"`
	AssignedTo      []uuid.UUID `json:"assigned_to"`
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.plans.Update(c.Request.Context(), id, service.UpdatePlanInput{
		Name:            req.Name,
		Goal:            req.Goal,
		CompletedAmount: req.CompletedAmount,
		AssignedTo:      req.AssignedTo,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

type updatePlanStatusRequest struct {
	Status string `json:"status"`
}

func (h *PlanHandler) UpdatePlanStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updatePlanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.plans.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *PlanHandler) DeletePlan(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.plans.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "plan and its tasks deleted"})
}
