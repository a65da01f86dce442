package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examgate/examgate-backend/internal/config"
	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/repository"
	"github.com/examgate/examgate-backend/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// BehaviorWorker consumes the behavior events queue and persists events
// to PostgreSQL. Events are audit data: losing one on a hard crash is
// acceptable, blocking an exam request on one is not.
type BehaviorWorker struct {
	repo *repository.BehaviorRepository
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewBehaviorWorker creates a new BehaviorWorker.
func NewBehaviorWorker(repo *repository.BehaviorRepository, rdb *redis.Client, log zerolog.Logger) *BehaviorWorker {
	return &BehaviorWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "behavior_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *BehaviorWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *BehaviorWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.BehaviorEventsQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var event service.BehaviorEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistEvent(ctx, &event); err != nil {
		w.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("behavior_type", event.BehaviorType).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.BehaviorEventsQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *BehaviorWorker) persistEvent(ctx context.Context, e *service.BehaviorEvent) error {
	userID, err := uuid.Parse(e.UserID)
	if err != nil {
		return err
	}

	return w.repo.Create(ctx, &model.Behavior{
		UserID:       userID,
		IP:           e.IP,
		BehaviorType: e.BehaviorType,
	})
}

// drain processes all remaining items in the queue before shutdown.
func (w *BehaviorWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.BehaviorEventsQueue).Result()
		if err != nil {
			break
		}

		var event service.BehaviorEvent
		if err := json.Unmarshal([]byte(result), &event); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistEvent(ctx, &event); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.BehaviorEventsQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
