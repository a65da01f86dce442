package model

import (
	"time"

	"github.com/google/uuid"
)

// Behavior is a fire-and-forget audit event (login, answer save, page
// switch, ...). Recording one must never block or fail the operation that
// produced it.
type Behavior struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	IP           string    `json:"ip"`
	BehaviorType string    `json:"behavior_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// BehaviorRequest is the payload for client-reported behavior events.
type BehaviorRequest struct {
	BehaviorType string `json:"behavior_type" binding:"required,max=64"`
}
