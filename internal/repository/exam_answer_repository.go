package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examAnswerColumns = `id, seq, answer, marked, is_correct, score, question_id,
	        examinee_id, exam_section_id, exam_id, created_at, updated_at`

// ExamAnswerRepository handles answer data access.
type ExamAnswerRepository struct {
	pool *pgxpool.Pool
}

// NewExamAnswerRepository creates a new ExamAnswerRepository.
func NewExamAnswerRepository(pool *pgxpool.Pool) *ExamAnswerRepository {
	return &ExamAnswerRepository{pool: pool}
}

func scanExamAnswer(row pgxRow) (*model.ExamAnswer, error) {
	a := &model.ExamAnswer{}
	err := row.Scan(&a.ID, &a.Seq, &a.Answer, &a.Marked, &a.IsCorrect, &a.Score,
		&a.QuestionID, &a.ExamineeID, &a.ExamSectionID, &a.ExamID,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an answer by its UUID, scoped to its owner.
func (r *ExamAnswerRepository) GetByID(ctx context.Context, id uuid.UUID, examineeID uuid.UUID) (*model.ExamAnswer, error) {
	return scanExamAnswer(r.pool.QueryRow(ctx,
		`SELECT `+examAnswerColumns+`
		 FROM exam_answers WHERE id = $1 AND examinee_id = $2`, id, examineeID))
}

// GetByExamineeQuestion retrieves the single logical answer for a
// (examinee, question) pair.
func (r *ExamAnswerRepository) GetByExamineeQuestion(ctx context.Context, examineeID, questionID uuid.UUID) (*model.ExamAnswer, error) {
	return scanExamAnswer(r.pool.QueryRow(ctx,
		`SELECT `+examAnswerColumns+`
		 FROM exam_answers WHERE examinee_id = $1 AND question_id = $2`,
		examineeID, questionID))
}

// Upsert inserts the answer row, converging on the existing row when a
// concurrent first save already created one for the same (examinee,
// question). An empty incoming answer (mark-only creation) never wipes
// text a concurrent save just wrote.
func (r *ExamAnswerRepository) Upsert(ctx context.Context, a *model.ExamAnswer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_answers
		        (seq, answer, marked, question_id, examinee_id,
		         exam_section_id, exam_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $5)
		 ON CONFLICT (examinee_id, question_id) DO UPDATE
		 SET answer = CASE WHEN EXCLUDED.answer = '' THEN exam_answers.answer
		                   ELSE EXCLUDED.answer END,
		     updated_at = NOW(), updated_by = EXCLUDED.examinee_id
		 RETURNING id, created_at, updated_at`,
		a.Seq, a.Answer, a.Marked, a.QuestionID, a.ExamineeID,
		a.ExamSectionID, a.ExamID,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// UpdateAnswer overwrites the answer text of an existing row in place.
func (r *ExamAnswerRepository) UpdateAnswer(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, answer string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_answers
		 SET answer = $1, updated_at = NOW(), updated_by = $2
		 WHERE id = $3 AND examinee_id = $2`,
		answer, examineeID, id)
	return err
}

// SetMarked toggles the marked-for-review flag.
func (r *ExamAnswerRepository) SetMarked(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, marked bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_answers
		 SET marked = $1, updated_at = NOW(), updated_by = $2
		 WHERE id = $3 AND examinee_id = $2`,
		marked, examineeID, id)
	return err
}
