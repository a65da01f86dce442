package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examgate/examgate-backend/internal/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BehaviorEvent is the queue payload for one audit event.
type BehaviorEvent struct {
	UserID       string `json:"user_id"`
	IP           string `json:"ip"`
	BehaviorType string `json:"behavior_type"`
}

// BehaviorService records audit events (logins, answer saves, client-side
// signals) by enqueueing them to Redis for the background worker.
// Recording is strictly fire-and-forget: failures are logged, never
// returned, so no exam operation can fail on an audit write.
type BehaviorService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewBehaviorService creates a new BehaviorService.
func NewBehaviorService(rdb *redis.Client, log zerolog.Logger) *BehaviorService {
	return &BehaviorService{
		rdb: rdb,
		log: log.With().Str("component", "behavior_service").Logger(),
	}
}

// RecordAsync enqueues a behavior event without blocking the caller.
func (s *BehaviorService) RecordAsync(userID uuid.UUID, ip, behaviorType string) {
	event := BehaviorEvent{
		UserID:       userID.String(),
		IP:           ip,
		BehaviorType: behaviorType,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			s.log.Error().Err(err).Msg("Marshal behavior event")
			return
		}
		if err := s.rdb.RPush(ctx, config.WorkerKey.BehaviorEventsQueue, payload).Err(); err != nil {
			s.log.Error().Err(err).
				Str("behavior_type", behaviorType).
				Msg("Enqueue behavior event")
		}
	}()
}
