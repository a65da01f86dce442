package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paperSectionColumns = `id, seq, name, content, duration, question_num,
	        question_type, paper_id, created_at`

// PaperRepository handles read-only access to paper content metadata.
// The progression state machine never mutates papers.
type PaperRepository struct {
	pool *pgxpool.Pool
}

// NewPaperRepository creates a new PaperRepository.
func NewPaperRepository(pool *pgxpool.Pool) *PaperRepository {
	return &PaperRepository{pool: pool}
}

// GetByID retrieves a paper by its UUID.
func (r *PaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	p := &model.Paper{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, note, paper_type, section_num, question_num,
		        question_type, full_score, pass_score, duration, created_at
		 FROM papers WHERE id = $1 AND is_deleted = FALSE`, id,
	).Scan(&p.ID, &p.Title, &p.Note, &p.PaperType, &p.SectionNum, &p.QuestionNum,
		&p.QuestionType, &p.FullScore, &p.PassScore, &p.Duration, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPaperSection(row pgxRow) (*model.PaperSection, error) {
	s := &model.PaperSection{}
	err := row.Scan(&s.ID, &s.Seq, &s.Name, &s.Content, &s.Duration, &s.QuestionNum,
		&s.QuestionType, &s.PaperID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetSectionByID retrieves a paper section by its UUID.
func (r *PaperRepository) GetSectionByID(ctx context.Context, id uuid.UUID) (*model.PaperSection, error) {
	return scanPaperSection(r.pool.QueryRow(ctx,
		`SELECT `+paperSectionColumns+`
		 FROM paper_sections WHERE id = $1 AND is_deleted = FALSE`, id))
}

// GetSectionBySeq retrieves the paper section at a given ordinal.
func (r *PaperRepository) GetSectionBySeq(ctx context.Context, paperID uuid.UUID, seq int) (*model.PaperSection, error) {
	return scanPaperSection(r.pool.QueryRow(ctx,
		`SELECT `+paperSectionColumns+`
		 FROM paper_sections
		 WHERE paper_id = $1 AND seq = $2 AND is_deleted = FALSE`, paperID, seq))
}

// ListSections returns a paper's sections ordered by sequence. Sequences
// are dense starting at 1, so index i holds sequence i+1.
func (r *PaperRepository) ListSections(ctx context.Context, paperID uuid.UUID) ([]model.PaperSection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paperSectionColumns+`
		 FROM paper_sections
		 WHERE paper_id = $1 AND is_deleted = FALSE ORDER BY seq`, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sections []model.PaperSection
	for rows.Next() {
		s, err := scanPaperSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, *s)
	}
	return sections, rows.Err()
}
