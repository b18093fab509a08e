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

type PlanCreatedHandler struct {
	repo    *repository.NotificationLogRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewPlanCreatedHandler(repo *repository.NotificationLogRepository, deduper *util.Deduper, logger *zap.Logger) *PlanCreatedHandler {
	return &PlanCreatedHandler{repo: repo, deduper: deduper, logger: logger}
}

// Handle writes one notification per assignee when a plan is materialized.
func (h *PlanCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency(mq.RoutingKeyPlanCreated, "plan_created_notifications", time.Since(start))
	}()

	var p mq.PlanCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// Malformed payload is not retryable; ack it away.
		h.logger.Error("Failed to unmarshal plan.created payload",
			zap.Error(err),
			zap.String("raw_payload", string(raw)),
		)
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, "plan_created", p.PlanID.String()) {
		return nil
	}

	h.logger.Info("Creating plan.created notifications",
		zap.String("plan_id", p.PlanID.String()),
		zap.Int("assignee_count", len(p.AssignedTo)),
	)

	for _, userID := range p.AssignedTo {
		log := &model.NotificationLog{
			UserID:     userID,
			EntityType: "plan",
			EntityID:   p.PlanID,
			Message:    fmt.Sprintf("Plan %q assigned to you: %d tasks covering a goal of %d", p.Name, p.TaskCount, p.Goal),
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
