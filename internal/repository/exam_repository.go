package repository

import (
	"context"
	"time"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examColumns = `id, status, current_seq, actual_start, actual_end, is_timeout,
	        score, is_passed, examinee_id, paper_id, schedule_session_id,
	        created_at, updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

func scanExam(row pgxRow) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Status, &e.CurrentSeq, &e.ActualStart, &e.ActualEnd,
		&e.IsTimeout, &e.Score, &e.IsPassed, &e.ExamineeID, &e.PaperID,
		&e.ScheduleSessionID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+`
		 FROM exams WHERE id = $1 AND is_deleted = FALSE`, id))
}

// GetUnclosedByExaminee resolves the single non-closed exam for an
// examinee, ordered by the scheduled session start so the nearest sitting
// wins if data ever holds more than one.
func (r *ExamRepository) GetUnclosedByExaminee(ctx context.Context, examineeID uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT e.id, e.status, e.current_seq, e.actual_start, e.actual_end, e.is_timeout,
		        e.score, e.is_passed, e.examinee_id, e.paper_id, e.schedule_session_id,
		        e.created_at, e.updated_at
		 FROM exams e
		 JOIN schedule_sessions ss ON e.schedule_session_id = ss.id
		 WHERE e.examinee_id = $1 AND e.status <> $2 AND e.is_deleted = FALSE
		 ORDER BY ss.plan_start
		 LIMIT 1`, examineeID, model.ExamStatusClosed))
}

// UpdateStatus moves an exam to the given status. The examinee guard in
// the WHERE clause prevents cross-examinee writes.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW(), updated_by = $2
		 WHERE id = $3 AND examinee_id = $2`,
		status, examineeID, id)
	return err
}

// SetActualStart records the exam's own start instant once, when the
// first section is admitted.
func (r *ExamRepository) SetActualStart(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, start time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET actual_start = $1, updated_at = NOW(), updated_by = $2
		 WHERE id = $3 AND examinee_id = $2 AND actual_start IS NULL`,
		start, examineeID, id)
	return err
}

// SetCurrentSeq advances the exam's current section pointer. No-op on a
// closed exam.
func (r *ExamRepository) SetCurrentSeq(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, seq int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET current_seq = $1, updated_at = NOW(), updated_by = $2
		 WHERE id = $3 AND examinee_id = $2 AND status <> $4`,
		seq, examineeID, id, model.ExamStatusClosed)
	return err
}

// Submit closes the exam, recording the closure instant and whether it
// was timeout-driven. Idempotent: an already closed exam keeps its
// original actual_end.
func (r *ExamRepository) Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, actual_end = $2, is_timeout = $3,
		        updated_at = NOW(), updated_by = $4
		 WHERE id = $5 AND examinee_id = $4 AND status <> $1`,
		model.ExamStatusClosed, now, isTimeout, examineeID, id)
	return err
}
