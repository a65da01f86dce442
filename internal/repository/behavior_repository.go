package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BehaviorRepository persists audit/behavior events. Writes arrive from
// the background worker, never from a request path.
type BehaviorRepository struct {
	pool *pgxpool.Pool
}

// NewBehaviorRepository creates a new BehaviorRepository.
func NewBehaviorRepository(pool *pgxpool.Pool) *BehaviorRepository {
	return &BehaviorRepository{pool: pool}
}

// Create inserts a behavior event.
func (r *BehaviorRepository) Create(ctx context.Context, b *model.Behavior) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO behaviors (user_id, ip, behavior_type)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		b.UserID, b.IP, b.BehaviorType,
	).Scan(&b.ID, &b.CreatedAt)
}
