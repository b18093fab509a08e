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

type PlanCompletedHandler struct {
	repo    *repository.NotificationLogRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewPlanCompletedHandler(repo *repository.NotificationLogRepository, deduper *util.Deduper, logger *zap.Logger) *PlanCompletedHandler {
	return &PlanCompletedHandler{repo: repo, deduper: deduper, logger: logger}
}

// Handle notifies every assignee when a plan reaches its goal.
func (h *PlanCompletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.RoutingKeyPlanCompleted, "plan_completed_notifications", time.Since(start))
	}()

	var p mq.PlanCompletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal plan.completed payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, "plan_completed", p.PlanID.String()) {
		return nil
	}

	h.logger.Info("Creating plan.completed notifications",
		zap.String("plan_id", p.PlanID.String()),
		zap.Int64("goal", p.Goal),
		zap.Int64("completed_amount", p.CompletedAmount),
	)

	for _, userID := range p.AssignedTo {
		log := &model.NotificationLog{
			UserID:     userID,
			EntityType: "plan",
			EntityID:   p.PlanID,
			Message:    fmt.Sprintf("Plan %q completed: %d of %d done", p.Name, p.CompletedAmount, p.Goal),
		}
		if err := h.repo.Insert(ctx, log); err != nil {
			h.logger.Error("Failed to insert notification log",
				zap.String("plan_id", p.PlanID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			return err
		}
	}

	return nil
}
