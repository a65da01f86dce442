package repository

import (
	"context"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const examineeColumns = `id, name, surname, email, enroll_number, password_hash, is_deleted, created_at`

// ExamineeRepository handles examinee data access.
type ExamineeRepository struct {
	pool *pgxpool.Pool
}

// NewExamineeRepository creates a new ExamineeRepository.
func NewExamineeRepository(pool *pgxpool.Pool) *ExamineeRepository {
	return &ExamineeRepository{pool: pool}
}

func scanExaminee(row pgxRow) (*model.Examinee, error) {
	e := &model.Examinee{}
	err := row.Scan(&e.ID, &e.Name, &e.Surname, &e.Email, &e.EnrollNumber,
		&e.PasswordHash, &e.IsDeleted, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetByID retrieves an examinee by UUID.
func (r *ExamineeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Examinee, error) {
	return scanExaminee(r.pool.QueryRow(ctx,
		`SELECT `+examineeColumns+` FROM examinees WHERE id = $1`, id))
}

// GetByEmail retrieves an examinee by email address.
func (r *ExamineeRepository) GetByEmail(ctx context.Context, email string) (*model.Examinee, error) {
	return scanExaminee(r.pool.QueryRow(ctx,
		`SELECT `+examineeColumns+` FROM examinees WHERE email = $1`, email))
}

// GetByEnrollNumber retrieves an examinee by enroll number.
func (r *ExamineeRepository) GetByEnrollNumber(ctx context.Context, enrollNumber string) (*model.Examinee, error) {
	return scanExaminee(r.pool.QueryRow(ctx,
		`SELECT `+examineeColumns+` FROM examinees WHERE enroll_number = $1`, enrollNumber))
}

// Create inserts a new examinee.
func (r *ExamineeRepository) Create(ctx context.Context, e *model.Examinee) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO examinees (name, surname, email, enroll_number, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.Name, e.Surname, e.Email, e.EnrollNumber, e.PasswordHash,
	).Scan(&e.ID, &e.CreatedAt)
}
