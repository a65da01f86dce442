package service

import (
	"context"
	"strings"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/repository"
	"github.com/google/uuid"
)

// ExamineeService handles examinee account lookups.
type ExamineeService struct {
	repo *repository.ExamineeRepository
}

// NewExamineeService creates a new ExamineeService.
func NewExamineeService(repo *repository.ExamineeRepository) *ExamineeService {
	return &ExamineeService{repo: repo}
}

// GetByID retrieves an examinee by UUID.
func (s *ExamineeService) GetByID(ctx context.Context, id uuid.UUID) (*model.Examinee, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername resolves a login username, which may be either the email
// address or the enroll number.
func (s *ExamineeService) GetByUsername(ctx context.Context, username string) (*model.Examinee, error) {
	if strings.Contains(username, "@") {
		return s.repo.GetByEmail(ctx, username)
	}
	return s.repo.GetByEnrollNumber(ctx, username)
}

// Create registers a new examinee account.
func (s *ExamineeService) Create(ctx context.Context, e *model.Examinee) error {
	return s.repo.Create(ctx, e)
}
