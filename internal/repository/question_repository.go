package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const questionColumns = `id, seq, content, question_type, paper_id, paper_section_id, created_at`

// QuestionRepository handles read-only access to questions and options.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func scanQuestion(row pgxRow) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.Seq, &q.Content, &q.QuestionType, &q.PaperID,
		&q.PaperSectionID, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions WHERE id = $1 AND is_deleted = FALSE`, id))
}

// GetBySectionSeq retrieves the question at a given ordinal within a
// paper section.
func (r *QuestionRepository) GetBySectionSeq(ctx context.Context, paperID, paperSectionID uuid.UUID, seq int) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE paper_id = $1 AND paper_section_id = $2 AND seq = $3 AND is_deleted = FALSE`,
		paperID, paperSectionID, seq))
}

// ListBySection returns all questions of a paper section in order.
func (r *QuestionRepository) ListBySection(ctx context.Context, paperSectionID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE paper_section_id = $1 AND is_deleted = FALSE ORDER BY seq`, paperSectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ListOptions returns a question's options in display order.
func (r *QuestionRepository) ListOptions(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error) {
	return r.queryOptions(ctx,
		`SELECT id, seq, content, is_correct, correct_seq, question_id
		 FROM question_options
		 WHERE question_id = $1 AND is_deleted = FALSE ORDER BY seq`, questionID)
}

// ListOptionsByQuestions returns the options of many questions at once.
func (r *QuestionRepository) ListOptionsByQuestions(ctx context.Context, questionIDs []uuid.UUID) ([]model.QuestionOption, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	return r.queryOptions(ctx,
		`SELECT id, seq, content, is_correct, correct_seq, question_id
		 FROM question_options
		 WHERE question_id = ANY($1) AND is_deleted = FALSE
		 ORDER BY question_id, seq`, questionIDs)
}

func (r *QuestionRepository) queryOptions(ctx context.Context, sql string, arg any) ([]model.QuestionOption, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []model.QuestionOption
	for rows.Next() {
		var o model.QuestionOption
		if err := rows.Scan(&o.ID, &o.Seq, &o.Content, &o.IsCorrect,
			&o.CorrectSeq, &o.QuestionID); err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}
