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

// Domain Errors
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrExamOver        = errors.New("exam is over")
	ErrSectionOver     = errors.New("section is over")
	ErrNotInExam       = errors.New("exam is not in progress")
)

// ExamStore is the exam persistence surface the progression logic needs.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	GetUnclosedByExaminee(ctx context.Context, examineeID uuid.UUID) (*model.Exam, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, status model.ExamStatus) error
	SetActualStart(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, start time.Time) error
	SetCurrentSeq(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, seq int) error
	Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error
}

// SectionStore is the exam section persistence surface.
type SectionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSection, error)
	GetByExamSeq(ctx context.Context, examID uuid.UUID, seq int) (*model.ExamSection, error)
	GetLast(ctx context.Context, examID uuid.UUID) (*model.ExamSection, error)
	ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSection, error)
	Create(ctx context.Context, s *model.ExamSection) error
	Start(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time) (time.Time, error)
	Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error
}

// PaperStore is the read-only paper content surface.
type PaperStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Paper, error)
	GetSectionByID(ctx context.Context, id uuid.UUID) (*model.PaperSection, error)
	GetSectionBySeq(ctx context.Context, paperID uuid.UUID, seq int) (*model.PaperSection, error)
	ListSections(ctx context.Context, paperID uuid.UUID) ([]model.PaperSection, error)
}

// ScheduleStore resolves per-section admission windows.
type ScheduleStore interface {
	GetBySessionSeq(ctx context.Context, sessionID uuid.UUID, seq int) (*model.ScheduleSection, error)
}

// EnterResult is the exam overview served on exam entry. Finished mirrors
// the exam's terminal state so clients need not interpret status codes.
type EnterResult struct {
	Exam          *model.Exam          `json:"exam"`
	Paper         *model.Paper         `json:"paper"`
	PaperSections []model.PaperSection `json:"paper_sections"`
	Finished      bool                 `json:"finished"`
}

// EnterSectionResult is the section lobby view. StartCountDown is the
// seconds left before the admission window opens (0 when startable);
// EndCountDown is the live seconds left of a running section.
type EnterSectionResult struct {
	Exam           *model.Exam         `json:"exam"`
	ExamSection    *model.ExamSection  `json:"exam_section"`
	PaperSection   *model.PaperSection `json:"paper_section"`
	StartCountDown int64               `json:"start_count_down"`
	EndCountDown   *int64              `json:"end_count_down,omitempty"`
}

// StartSectionResult is returned from a start attempt. ExamSection is
// omitted when the attempt found the countdown already spent and closed
// the section instead.
type StartSectionResult struct {
	Exam         *model.Exam        `json:"exam"`
	ExamSection  *model.ExamSection `json:"exam_section,omitempty"`
	EndCountDown int64              `json:"end_count_down"`
}

// SubmitSectionResult reports where the exam stands after a section close.
type SubmitSectionResult struct {
	Finished bool `json:"finished"`
	NextSeq  int  `json:"next_seq"`
}

// ProgressService drives the exam and section state machines. All timeout
// enforcement is lazy: expiry is detected and applied on the read or write
// that first observes it, against the injected clock.
type ProgressService struct {
	exams     ExamStore
	sections  SectionStore
	papers    PaperStore
	schedules ScheduleStore
	now       func() time.Time
	log       zerolog.Logger
}

// NewProgressService creates a new ProgressService using the wall clock.
func NewProgressService(exams ExamStore, sections SectionStore, papers PaperStore, schedules ScheduleStore, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		exams:     exams,
		sections:  sections,
		papers:    papers,
		schedules: schedules,
		now:       time.Now,
		log:       log.With().Str("component", "progress_service").Logger(),
	}
}

// WithClock overrides the time source. Tests use it to pin now.
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

// Enter resolves the examinee's single unclosed exam and serves the exam
// overview. It is also the main lazy-reconcile point: a section whose
// deadline passed while the client was away is force-closed here, and if
// it was the paper's last section the whole exam closes as timed out.
func (s *ProgressService) Enter(ctx context.Context, examineeID uuid.UUID) (*EnterResult, error) {
	exam, err := s.exams.GetUnclosedByExaminee(ctx, examineeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("resolve exam: %w", err)
	}

	// First entry moves the exam out of NOT_STARTED. Idempotent.
	if exam.Status == model.ExamStatusNotStarted {
		if err := s.exams.UpdateStatus(ctx, exam.ID, examineeID, model.ExamStatusInPreparation); err != nil {
			return nil, fmt.Errorf("update exam status: %w", err)
		}
		exam.Status = model.ExamStatusInPreparation
	}

	if err := s.reconcileLastSection(ctx, exam); err != nil {
		return nil, err
	}

	// A terminal exam gets its record back and nothing else.
	if exam.Status.Closed() {
		return &EnterResult{Exam: exam, Finished: true}, nil
	}

	paper, err := s.papers.GetByID(ctx, exam.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	paperSections, err := s.papers.ListSections(ctx, exam.PaperID)
	if err != nil {
		return nil, fmt.Errorf("load paper sections: %w", err)
	}

	return &EnterResult{
		Exam:          exam,
		Paper:         paper,
		PaperSections: paperSections,
		Finished:      exam.Status.Closed(),
	}, nil
}

// EnterSection serves the lobby for the exam's current section, creating
// its runtime record lazily on first entry. Past sections are gone for
// good; a running section that meanwhile expired is closed on the spot.
func (s *ProgressService) EnterSection(ctx context.Context, examineeID uuid.UUID, req *model.EnterSectionRequest) (*EnterSectionResult, error) {
	exam, err := s.getOwnedExam(ctx, examineeID, req.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.Status.Closed() {
		return nil, ErrExamOver
	}
	if req.Seq < exam.CurrentSeq {
		return nil, ErrSectionOver
	}
	if req.Seq > exam.CurrentSeq {
		return nil, ErrSectionNotFound
	}

	paperSection, err := s.papers.GetSectionBySeq(ctx, exam.PaperID, req.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("load paper section: %w", err)
	}

	section := &model.ExamSection{
		Name:              paperSection.Name,
		Seq:               req.Seq,
		Status:            model.SectionStatusNotStarted,
		ExamineeID:        examineeID,
		ExamID:            exam.ID,
		PaperID:           exam.PaperID,
		PaperSectionID:    paperSection.ID,
		ScheduleSessionID: exam.ScheduleSessionID,
	}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}

	now := s.now()
	result := &EnterSectionResult{
		Exam:         exam,
		ExamSection:  section,
		PaperSection: paperSection,
	}

	switch section.Status {
	case model.SectionStatusClosed:
		return nil, ErrSectionOver
	case model.SectionStatusInExam:
		if section.ActualStart != nil {
			duration := timing.SectionDuration(paperSection.Duration)
			if ev, expired := timing.CheckTimeout(*section.ActualStart, duration, now); expired {
				if _, err := s.closeSectionAndAdvance(ctx, exam, section, ev.At, true); err != nil {
					return nil, err
				}
				return nil, ErrSectionOver
			}
			left := int64(timing.Remaining(*section.ActualStart, duration, now) / time.Second)
			result.EndCountDown = &left
		}
	case model.SectionStatusNotStarted:
		window, err := s.admissionWindow(ctx, exam.ScheduleSessionID, req.Seq)
		if err != nil {
			return nil, err
		}
		if window != nil {
			// A lapsed window means the section can never be started:
			// close it dead and move the exam past it.
			if aerr := window.Admit(now); errors.Is(aerr, timing.ErrWindowExpired) {
				if _, cerr := s.closeSectionAndAdvance(ctx, exam, section, now, true); cerr != nil {
					return nil, cerr
				}
				return nil, timing.ErrWindowExpired
			}
			result.StartCountDown = int64(window.StartCountdown(now) / time.Second)
		}
	}

	return result, nil
}

// StartSection admits the examinee into a section, starting its clock.
// actual_start is write-once; retries and refreshes converge on the first
// admission instant. The first admitted section also flips the exam to
// IN_EXAM and stamps the exam's own start.
func (s *ProgressService) StartSection(ctx context.Context, examineeID uuid.UUID, req *model.StartSectionRequest) (*StartSectionResult, error) {
	exam, err := s.getOwnedExam(ctx, examineeID, req.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.Status.Closed() {
		return nil, ErrExamOver
	}

	section, err := s.getOwnedSection(ctx, examineeID, exam.ID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if section.Status.Closed() {
		return nil, ErrSectionOver
	}

	paperSection, err := s.papers.GetSectionByID(ctx, section.PaperSectionID)
	if err != nil {
		return nil, fmt.Errorf("load paper section: %w", err)
	}
	duration := timing.SectionDuration(paperSection.Duration)
	now := s.now()

	if section.Status == model.SectionStatusNotStarted {
		window, err := s.admissionWindow(ctx, exam.ScheduleSessionID, section.Seq)
		if err != nil {
			return nil, err
		}
		if window != nil {
			if err := window.Admit(now); err != nil {
				if errors.Is(err, timing.ErrWindowExpired) {
					// The start window is gone: the section is dead and the
					// exam moves past it.
					if _, cerr := s.closeSectionAndAdvance(ctx, exam, section, now, true); cerr != nil {
						return nil, cerr
					}
				}
				return nil, err
			}
		}

		started, err := s.sections.Start(ctx, section.ID, examineeID, now)
		if err != nil {
			return nil, fmt.Errorf("start section: %w", err)
		}
		section.ActualStart = &started
		section.Status = model.SectionStatusInExam

		if exam.Status != model.ExamStatusInExam {
			if err := s.exams.SetActualStart(ctx, exam.ID, examineeID, started); err != nil {
				return nil, fmt.Errorf("stamp exam start: %w", err)
			}
			if err := s.exams.UpdateStatus(ctx, exam.ID, examineeID, model.ExamStatusInExam); err != nil {
				return nil, fmt.Errorf("update exam status: %w", err)
			}
			exam.Status = model.ExamStatusInExam
		}

		s.log.Info().
			Str("exam_id", exam.ID.String()).
			Str("section_id", section.ID.String()).
			Int("seq", section.Seq).
			Time("actual_start", started).
			Msg("Section started")
	}

	// Already-started sections fall through here: same answer for every
	// retry, minus the elapsed time.
	if section.ActualStart == nil {
		return nil, fmt.Errorf("section %s running without a start instant", section.ID)
	}
	if ev, expired := timing.CheckTimeout(*section.ActualStart, duration, now); expired {
		// The clock ran out before this attempt: close the section and
		// report the advanced exam with the section omitted.
		if _, err := s.closeSectionAndAdvance(ctx, exam, section, ev.At, true); err != nil {
			return nil, err
		}
		return &StartSectionResult{Exam: exam}, nil
	}

	return &StartSectionResult{
		Exam:         exam,
		ExamSection:  section,
		EndCountDown: int64(timing.Remaining(*section.ActualStart, duration, now) / time.Second),
	}, nil
}

// SubmitSection closes a section on the examinee's request and advances
// the exam, closing it instead when the paper has no further section.
// Submitting an already-closed section is a no-op success.
func (s *ProgressService) SubmitSection(ctx context.Context, examineeID uuid.UUID, req *model.SubmitSectionRequest) (*SubmitSectionResult, error) {
	exam, err := s.getOwnedExam(ctx, examineeID, req.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.Status.Closed() {
		return &SubmitSectionResult{Finished: true, NextSeq: exam.CurrentSeq}, nil
	}

	section, err := s.getOwnedSection(ctx, examineeID, exam.ID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if section.Status.Closed() {
		return &SubmitSectionResult{Finished: exam.Status.Closed(), NextSeq: exam.CurrentSeq}, nil
	}

	finished, err := s.closeSectionAndAdvance(ctx, exam, section, s.now(), false)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("section_id", section.ID.String()).
		Int("seq", section.Seq).
		Bool("finished", finished).
		Msg("Section submitted")

	return &SubmitSectionResult{Finished: finished, NextSeq: exam.CurrentSeq}, nil
}

// SubmitExam closes the whole exam on the examinee's request, optionally
// closing the section they are sitting in first. Idempotent.
func (s *ProgressService) SubmitExam(ctx context.Context, examineeID uuid.UUID, req *model.SubmitExamRequest) (*model.Exam, error) {
	exam, err := s.getOwnedExam(ctx, examineeID, req.ExamID)
	if err != nil {
		return nil, err
	}
	if exam.Status.Closed() {
		return exam, nil
	}

	now := s.now()
	if req.SectionID != nil {
		section, err := s.getOwnedSection(ctx, examineeID, exam.ID, *req.SectionID)
		if err != nil {
			return nil, err
		}
		if !section.Status.Closed() {
			if err := s.sections.Submit(ctx, section.ID, examineeID, now, false); err != nil {
				return nil, fmt.Errorf("close section: %w", err)
			}
		}
	}

	if err := s.exams.Submit(ctx, exam.ID, examineeID, now, false); err != nil {
		return nil, fmt.Errorf("close exam: %w", err)
	}
	exam.Status = model.ExamStatusClosed
	exam.ActualEnd = &now

	s.log.Info().Str("exam_id", exam.ID.String()).Msg("Exam submitted")
	return exam, nil
}

// reconcileLastSection applies any overdue timeout to the most recently
// entered section. On the paper's last section this is where the exam
// itself closes, flagged as a timeout.
func (s *ProgressService) reconcileLastSection(ctx context.Context, exam *model.Exam) error {
	section, err := s.sections.GetLast(ctx, exam.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil // No section entered yet.
		}
		return fmt.Errorf("load last section: %w", err)
	}
	if section.Status != model.SectionStatusInExam || section.ActualStart == nil {
		return nil
	}

	paperSection, err := s.papers.GetSectionByID(ctx, section.PaperSectionID)
	if err != nil {
		return fmt.Errorf("load paper section: %w", err)
	}
	duration := timing.SectionDuration(paperSection.Duration)

	ev, expired := timing.CheckTimeout(*section.ActualStart, duration, s.now())
	if !expired {
		return nil
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("section_id", section.ID.String()).
		Int("seq", section.Seq).
		Time("deadline", ev.Deadline).
		Msg("Section expired, force closing")

	_, err = s.closeSectionAndAdvance(ctx, exam, section, ev.At, true)
	return err
}

// closeSectionAndAdvance closes one section and either advances the
// exam's section pointer or, past the final section, closes the exam with
// the same timeout flag. Returns whether the exam finished.
func (s *ProgressService) closeSectionAndAdvance(ctx context.Context, exam *model.Exam, section *model.ExamSection, at time.Time, isTimeout bool) (bool, error) {
	if err := s.sections.Submit(ctx, section.ID, exam.ExamineeID, at, isTimeout); err != nil {
		return false, fmt.Errorf("close section: %w", err)
	}
	section.Status = model.SectionStatusClosed
	section.ActualEnd = &at
	section.IsTimeout = isTimeout

	paper, err := s.papers.GetByID(ctx, exam.PaperID)
	if err != nil {
		return false, fmt.Errorf("load paper: %w", err)
	}

	if section.Seq >= paper.SectionNum {
		if err := s.exams.Submit(ctx, exam.ID, exam.ExamineeID, at, isTimeout); err != nil {
			return false, fmt.Errorf("close exam: %w", err)
		}
		exam.Status = model.ExamStatusClosed
		exam.ActualEnd = &at
		exam.IsTimeout = isTimeout
		return true, nil
	}

	next := section.Seq + 1
	if err := s.exams.SetCurrentSeq(ctx, exam.ID, exam.ExamineeID, next); err != nil {
		return false, fmt.Errorf("advance section pointer: %w", err)
	}
	exam.CurrentSeq = next
	return false, nil
}

// admissionWindow loads the schedule constraint for a section ordinal.
// A session without a row for the ordinal imposes no constraint.
func (s *ProgressService) admissionWindow(ctx context.Context, sessionID uuid.UUID, seq int) (*timing.Window, error) {
	sched, err := s.schedules.GetBySessionSeq(ctx, sessionID, seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load schedule section: %w", err)
	}
	return &timing.Window{Earliest: sched.PlanStartEarly, Latest: sched.PlanStartLate}, nil
}

func (s *ProgressService) getOwnedExam(ctx context.Context, examineeID, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	// Foreign exams are indistinguishable from absent ones.
	if exam.ExamineeID != examineeID {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

func (s *ProgressService) getOwnedSection(ctx context.Context, examineeID, examID, sectionID uuid.UUID) (*model.ExamSection, error) {
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
	return section, nil
}
