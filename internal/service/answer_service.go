package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/timing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ErrAnswerNotFound covers both an absent answer row and one owned by
// someone else.
var ErrAnswerNotFound = errors.New("answer not found")

// AnswerStore is the answer persistence surface.
type AnswerStore interface {
	GetByID(ctx context.Context, id uuid.UUID, examineeID uuid.UUID) (*model.ExamAnswer, error)
	GetByExamineeQuestion(ctx context.Context, examineeID, questionID uuid.UUID) (*model.ExamAnswer, error)
	Upsert(ctx context.Context, a *model.ExamAnswer) error
	UpdateAnswer(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, answer string) error
	SetMarked(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, marked bool) error
}

// QuestionStore is the read-only question content surface.
type QuestionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	GetBySectionSeq(ctx context.Context, paperID, paperSectionID uuid.UUID, seq int) (*model.Question, error)
	ListBySection(ctx context.Context, paperSectionID uuid.UUID) ([]model.Question, error)
	ListOptions(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error)
	ListOptionsByQuestions(ctx context.Context, questionIDs []uuid.UUID) ([]model.QuestionOption, error)
}

// QuestionView is a question as served mid-exam: options redacted, the
// examinee's own answer (if any) attached with correctness stripped.
type QuestionView struct {
	Question *model.Question        `json:"question"`
	Options  []model.QuestionOption `json:"options"`
	Answer   *model.ExamAnswer      `json:"answer,omitempty"`
}

// AnswerService handles answer capture and question delivery during a
// running section. It never grades; correctness fields stay server-side.
type AnswerService struct {
	exams     ExamStore
	sections  SectionStore
	papers    PaperStore
	questions QuestionStore
	answers   AnswerStore
	now       func() time.Time
	log       zerolog.Logger
}

// NewAnswerService creates a new AnswerService using the wall clock.
func NewAnswerService(exams ExamStore, sections SectionStore, papers PaperStore, questions QuestionStore, answers AnswerStore, log zerolog.Logger) *AnswerService {
	return &AnswerService{
		exams:     exams,
		sections:  sections,
		papers:    papers,
		questions: questions,
		answers:   answers,
		now:       time.Now,
		log:       log.With().Str("component", "answer_service").Logger(),
	}
}

// WithClock overrides the time source. Tests use it to pin now.
func (s *AnswerService) WithClock(now func() time.Time) *AnswerService {
	s.now = now
	return s
}

// SaveAnswer creates or overwrites the single logical answer for a
// question. The write is accepted only while the target section's clock
// is running; a deadline that passed is detected here even if nothing has
// closed the section yet.
func (s *AnswerService) SaveAnswer(ctx context.Context, examineeID uuid.UUID, req *model.SaveAnswerRequest) (*model.ExamAnswer, error) {
	section, err := s.requireRunningSection(ctx, examineeID, req.ExamID, req.ExamSectionID)
	if err != nil {
		return nil, err
	}

	if req.ExamAnswerID != nil {
		existing, err := s.getOwnedAnswer(ctx, examineeID, *req.ExamAnswerID, req.ExamID)
		if err != nil {
			return nil, err
		}
		if err := s.answers.UpdateAnswer(ctx, existing.ID, examineeID, req.Answer); err != nil {
			return nil, fmt.Errorf("update answer: %w", err)
		}
		existing.Answer = req.Answer
		return existing.Redacted(), nil
	}

	answer := &model.ExamAnswer{
		Seq:           req.QuestionSeq,
		Answer:        req.Answer,
		QuestionID:    req.QuestionID,
		ExamineeID:    examineeID,
		ExamSectionID: section.ID,
		ExamID:        req.ExamID,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("save answer: %w", err)
	}
	return answer.Redacted(), nil
}

// Mark toggles the marked-for-review flag, creating an empty answer row
// first when the question was never answered.
func (s *AnswerService) Mark(ctx context.Context, examineeID uuid.UUID, req *model.MarkRequest) (*model.ExamAnswer, error) {
	section, err := s.requireRunningSection(ctx, examineeID, req.ExamID, req.ExamSectionID)
	if err != nil {
		return nil, err
	}

	var answer *model.ExamAnswer
	if req.ExamAnswerID != nil {
		answer, err = s.getOwnedAnswer(ctx, examineeID, *req.ExamAnswerID, req.ExamID)
		if err != nil {
			return nil, err
		}
	} else {
		answer, err = s.answers.GetByExamineeQuestion(ctx, examineeID, req.QuestionID)
		if errors.Is(err, pgx.ErrNoRows) {
			question, qerr := s.questions.GetByID(ctx, req.QuestionID)
			if qerr != nil {
				if errors.Is(qerr, pgx.ErrNoRows) {
					return nil, ErrAnswerNotFound
				}
				return nil, fmt.Errorf("load question: %w", qerr)
			}
			answer = &model.ExamAnswer{
				Seq:           question.Seq,
				QuestionID:    req.QuestionID,
				ExamineeID:    examineeID,
				ExamSectionID: section.ID,
				ExamID:        req.ExamID,
			}
			if err := s.answers.Upsert(ctx, answer); err != nil {
				return nil, fmt.Errorf("create answer: %w", err)
			}
		} else if err != nil {
			return nil, fmt.Errorf("load answer: %w", err)
		}
	}

	if err := s.answers.SetMarked(ctx, answer.ID, examineeID, *req.Marked); err != nil {
		return nil, fmt.Errorf("mark answer: %w", err)
	}
	answer.Marked = *req.Marked
	return answer.Redacted(), nil
}

// Question serves one question with redacted options and the examinee's
// current answer, addressed by ordinal within a running section.
func (s *AnswerService) Question(ctx context.Context, examineeID uuid.UUID, req *model.QuestionRequest) (*QuestionView, error) {
	section, err := s.sections.GetByID(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("load section: %w", err)
	}
	if section.ExamineeID != examineeID {
		return nil, ErrSectionNotFound
	}
	if _, err := s.requireRunningSection(ctx, examineeID, section.ExamID, section.ID); err != nil {
		return nil, err
	}

	question, err := s.questions.GetBySectionSeq(ctx, section.PaperID, section.PaperSectionID, req.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("load question: %w", err)
	}

	options, err := s.questions.ListOptions(ctx, question.ID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	for i := range options {
		options[i].RedactForExam(question.QuestionType)
	}

	view := &QuestionView{Question: question, Options: options}

	answer, err := s.answers.GetByExamineeQuestion(ctx, examineeID, question.ID)
	if err == nil {
		view.Answer = answer.Redacted()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load answer: %w", err)
	}

	return view, nil
}

// SectionQuestions lists every question of a running section at once,
// options redacted, for clients that render the whole section up front.
func (s *AnswerService) SectionQuestions(ctx context.Context, examineeID uuid.UUID, req *model.SectionQuestionsRequest) ([]QuestionView, error) {
	section, err := s.requireRunningSection(ctx, examineeID, req.ExamID, req.SectionID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListBySection(ctx, section.PaperSectionID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	ids := make([]uuid.UUID, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	options, err := s.questions.ListOptionsByQuestions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	byQuestion := make(map[uuid.UUID][]model.QuestionOption, len(questions))
	for _, o := range options {
		byQuestion[o.QuestionID] = append(byQuestion[o.QuestionID], o)
	}

	views := make([]QuestionView, len(questions))
	for i := range questions {
		q := questions[i]
		opts := byQuestion[q.ID]
		for j := range opts {
			opts[j].RedactForExam(q.QuestionType)
		}
		views[i] = QuestionView{Question: &questions[i], Options: opts}
	}
	return views, nil
}

// requireRunningSection loads a section owned by the examinee inside the
// given exam and verifies both clocks are live: exam IN_EXAM, section
// IN_EXAM, deadline not yet passed. It rejects without mutating; the
// progression paths apply the actual closure.
func (s *AnswerService) requireRunningSection(ctx context.Context, examineeID, examID, sectionID uuid.UUID) (*model.ExamSection, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if exam.ExamineeID != examineeID {
		return nil, ErrExamNotFound
	}
	if exam.Status.Closed() {
		return nil, ErrExamOver
	}
	if exam.Status != model.ExamStatusInExam {
		return nil, ErrNotInExam
	}

	section, err := s.sections.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("load section: %w", err)
	}
	if section.ExamineeID != examineeID || section.ExamID != examID {
		return nil, ErrSectionNotFound
	}
	if section.Status.Closed() {
		return nil, ErrSectionOver
	}
	if section.Status != model.SectionStatusInExam || section.ActualStart == nil {
		return nil, ErrNotInExam
	}

	paperSection, err := s.papers.GetSectionByID(ctx, section.PaperSectionID)
	if err != nil {
		return nil, fmt.Errorf("load paper section: %w", err)
	}
	if _, expired := timing.CheckTimeout(*section.ActualStart, timing.SectionDuration(paperSection.Duration), s.now()); expired {
		return nil, ErrSectionOver
	}

	return section, nil
}

func (s *AnswerService) getOwnedAnswer(ctx context.Context, examineeID, answerID, examID uuid.UUID) (*model.ExamAnswer, error) {
	answer, err := s.answers.GetByID(ctx, answerID, examineeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAnswerNotFound
		}
		return nil, fmt.Errorf("load answer: %w", err)
	}
	if answer.ExamID != examID {
		return nil, ErrAnswerNotFound
	}
	return answer, nil
}
