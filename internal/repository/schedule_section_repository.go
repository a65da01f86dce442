package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleSectionRepository handles read-only access to per-section
// admission windows. The state machine consults but never mutates them.
type ScheduleSectionRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleSectionRepository creates a new ScheduleSectionRepository.
func NewScheduleSectionRepository(pool *pgxpool.Pool) *ScheduleSectionRepository {
	return &ScheduleSectionRepository{pool: pool}
}

// GetBySessionSeq retrieves the admission window for a section ordinal
// within a scheduled session.
func (r *ScheduleSectionRepository) GetBySessionSeq(ctx context.Context, sessionID uuid.UUID, seq int) (*model.ScheduleSection, error) {
	s := &model.ScheduleSection{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, seq, plan_start_early, plan_start_late, schedule_session_id, created_at
		 FROM schedule_sections
		 WHERE schedule_session_id = $1 AND seq = $2 AND is_deleted = FALSE`,
		sessionID, seq,
	).Scan(&s.ID, &s.Seq, &s.PlanStartEarly, &s.PlanStartLate,
		&s.ScheduleSessionID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
