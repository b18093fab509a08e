package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationLog struct {
	ID         int64     `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	EntityType string    `json:"entity_type"` // plan / task
	EntityID   uuid.UUID `json:"entity_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
