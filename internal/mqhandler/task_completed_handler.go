package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"planboard/contracts/mq"
	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/pkg/metrics"
	"planboard/pkg/util"
)

type TaskCompletedHandler struct {
	repo    *repository.NotificationLogRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewTaskCompletedHandler(repo *repository.NotificationLogRepository, deduper *util.Deduper, logger *zap.Logger) *TaskCompletedHandler {
	return &TaskCompletedHandler{repo: repo, deduper: deduper, logger: logger}
}

// Handle notifies assignees when one of their tasks is completed.
func (h *TaskCompletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.RoutingKeyTaskCompleted, "task_completed_notifications", time.Since(start))
	}()

	var p mq.TaskCompletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal task.completed payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, "task_completed", p.TaskID.String()) {
		return nil
	}

	for _, userID := range p.AssignedTo {
		log := &model.NotificationLog{
			UserID:     userID,
			EntityType: "task",
			EntityID:   p.TaskID,
			Message:    fmt.Sprintf("Task %q completed (amount %d)", p.Title, p.Amount),
		}
		if err := h.repo.Insert(ctx, log); err != nil {
			h.logger.Error("Failed to insert notification log",
				zap.String("task_id", p.TaskID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}
