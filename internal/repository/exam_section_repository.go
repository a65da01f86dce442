package repository

import (
	"context"
	"errors"
	"time"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examSectionColumns = `id, name, seq, status, actual_start, actual_end, is_timeout,
	        examinee_id, exam_id, paper_id, paper_section_id, schedule_session_id,
	        created_at, updated_at`

// ExamSectionRepository handles exam section data access.
type ExamSectionRepository struct {
	pool *pgxpool.Pool
}

// NewExamSectionRepository creates a new ExamSectionRepository.
func NewExamSectionRepository(pool *pgxpool.Pool) *ExamSectionRepository {
	return &ExamSectionRepository{pool: pool}
}

func scanExamSection(row pgxRow) (*model.ExamSection, error) {
	s := &model.ExamSection{}
	err := row.Scan(&s.ID, &s.Name, &s.Seq, &s.Status, &s.ActualStart, &s.ActualEnd,
		&s.IsTimeout, &s.ExamineeID, &s.ExamID, &s.PaperID, &s.PaperSectionID,
		&s.ScheduleSessionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a section by its UUID.
func (r *ExamSectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSection, error) {
	return scanExamSection(r.pool.QueryRow(ctx,
		`SELECT `+examSectionColumns+`
		 FROM exam_sections WHERE id = $1`, id))
}

// GetByExamSeq retrieves the section record for a given ordinal, if it
// was ever entered.
func (r *ExamSectionRepository) GetByExamSeq(ctx context.Context, examID uuid.UUID, seq int) (*model.ExamSection, error) {
	return scanExamSection(r.pool.QueryRow(ctx,
		`SELECT `+examSectionColumns+`
		 FROM exam_sections WHERE exam_id = $1 AND seq = $2`, examID, seq))
}

// GetLast retrieves the most recently entered section of an exam.
func (r *ExamSectionRepository) GetLast(ctx context.Context, examID uuid.UUID) (*model.ExamSection, error) {
	return scanExamSection(r.pool.QueryRow(ctx,
		`SELECT `+examSectionColumns+`
		 FROM exam_sections WHERE exam_id = $1
		 ORDER BY seq DESC LIMIT 1`, examID))
}

// ListByExam returns all entered sections of an exam in sequence order.
func (r *ExamSectionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examSectionColumns+`
		 FROM exam_sections WHERE exam_id = $1 ORDER BY seq`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.ExamSection
	for rows.Next() {
		s, err := scanExamSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}

// Create inserts a lazily created section record (status NOT_STARTED).
// A concurrent duplicate entry for the same (exam, seq) collapses onto
// the existing row.
func (r *ExamSectionRepository) Create(ctx context.Context, s *model.ExamSection) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO exam_sections
		        (name, seq, status, examinee_id, exam_id, paper_id,
		         paper_section_id, schedule_session_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $4)
		 ON CONFLICT (exam_id, seq) DO NOTHING
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Seq, s.Status, s.ExamineeID, s.ExamID, s.PaperID,
		s.PaperSectionID, s.ScheduleSessionID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, getErr := r.GetByExamSeq(ctx, s.ExamID, s.Seq)
		if getErr != nil {
			return getErr
		}
		*s = *existing
		return nil
	}
	return err
}

// Start admits the section: actual_start is written exactly once, guarded
// by the NOT_STARTED status, and the recorded instant is returned even if
// a concurrent call won the write.
func (r *ExamSectionRepository) Start(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time) (time.Time, error) {
	var started time.Time
	err := r.pool.QueryRow(ctx,
		`UPDATE exam_sections
		 SET actual_start = $1, status = $2, updated_at = NOW(), updated_by = $3
		 WHERE id = $4 AND examinee_id = $3 AND status = $5
		 RETURNING actual_start`,
		now, model.SectionStatusInExam, examineeID, id, model.SectionStatusNotStarted,
	).Scan(&started)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already started; keep the first writer's instant.
		err = r.pool.QueryRow(ctx,
			`SELECT actual_start FROM exam_sections
			 WHERE id = $1 AND examinee_id = $2 AND actual_start IS NOT NULL`,
			id, examineeID).Scan(&started)
	}
	return started, err
}

// Submit closes the section. is_timeout distinguishes the lazy timeout
// path from an explicit client submit. Idempotent on a closed section.
func (r *ExamSectionRepository) Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sections
		 SET status = $1, actual_end = $2, is_timeout = $3, updated_at = NOW(), updated_by = $4
		 WHERE id = $5 AND examinee_id = $4 AND status <> $1`,
		model.SectionStatusClosed, now, isTimeout, examineeID, id)
	return err
}
