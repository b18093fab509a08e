package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"planboard/internal/repository"
)

type NotificationHandler struct {
	repo   *repository.NotificationLogRepository
	logger *zap.Logger
}

func NewNotificationHandler(repo *repository.NotificationLogRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{repo: repo, logger: logger}
}

// ListMine returns the caller's newest notifications.
func (h *NotificationHandler) ListMine(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	logs, err := h.repo.ListByUser(c.Request.Context(), actorFrom(c).ID, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": logs})
}
