package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/timing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ─── Fakes ─────────────────────────────────────────────────────────────

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: make(map[uuid.UUID]*model.Exam)}
}

func (f *fakeExamStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExamStore) GetUnclosedByExaminee(ctx context.Context, examineeID uuid.UUID) (*model.Exam, error) {
	for _, e := range f.exams {
		if e.ExamineeID == examineeID && !e.Status.Closed() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeExamStore) UpdateStatus(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, status model.ExamStatus) error {
	if e, ok := f.exams[id]; ok && e.ExamineeID == examineeID {
		e.Status = status
	}
	return nil
}

func (f *fakeExamStore) SetActualStart(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, start time.Time) error {
	if e, ok := f.exams[id]; ok && e.ExamineeID == examineeID && e.ActualStart == nil {
		e.ActualStart = &start
	}
	return nil
}

func (f *fakeExamStore) SetCurrentSeq(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, seq int) error {
	if e, ok := f.exams[id]; ok && e.ExamineeID == examineeID && !e.Status.Closed() {
		e.CurrentSeq = seq
	}
	return nil
}

func (f *fakeExamStore) Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error {
	if e, ok := f.exams[id]; ok && e.ExamineeID == examineeID && !e.Status.Closed() {
		e.Status = model.ExamStatusClosed
		e.ActualEnd = &now
		e.IsTimeout = isTimeout
	}
	return nil
}

type fakeSectionStore struct {
	sections map[uuid.UUID]*model.ExamSection
}

func newFakeSectionStore() *fakeSectionStore {
	return &fakeSectionStore{sections: make(map[uuid.UUID]*model.ExamSection)}
}

func (f *fakeSectionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSection, error) {
	s, ok := f.sections[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSectionStore) GetByExamSeq(ctx context.Context, examID uuid.UUID, seq int) (*model.ExamSection, error) {
	for _, s := range f.sections {
		if s.ExamID == examID && s.Seq == seq {
			cp := *s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeSectionStore) GetLast(ctx context.Context, examID uuid.UUID) (*model.ExamSection, error) {
	var last *model.ExamSection
	for _, s := range f.sections {
		if s.ExamID == examID && (last == nil || s.Seq > last.Seq) {
			last = s
		}
	}
	if last == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *last
	return &cp, nil
}

func (f *fakeSectionStore) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.ExamSection, error) {
	var out []model.ExamSection
	for _, s := range f.sections {
		if s.ExamID == examID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (f *fakeSectionStore) Create(ctx context.Context, s *model.ExamSection) error {
	if existing, err := f.GetByExamSeq(ctx, s.ExamID, s.Seq); err == nil {
		*s = *existing
		return nil
	}
	s.ID = uuid.New()
	cp := *s
	f.sections[s.ID] = &cp
	return nil
}

func (f *fakeSectionStore) Start(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time) (time.Time, error) {
	s, ok := f.sections[id]
	if !ok || s.ExamineeID != examineeID {
		return time.Time{}, pgx.ErrNoRows
	}
	if s.Status == model.SectionStatusNotStarted {
		s.Status = model.SectionStatusInExam
		start := now
		s.ActualStart = &start
		return start, nil
	}
	if s.ActualStart == nil {
		return time.Time{}, pgx.ErrNoRows
	}
	return *s.ActualStart, nil
}

func (f *fakeSectionStore) Submit(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, now time.Time, isTimeout bool) error {
	if s, ok := f.sections[id]; ok && s.ExamineeID == examineeID && !s.Status.Closed() {
		s.Status = model.SectionStatusClosed
		s.ActualEnd = &now
		s.IsTimeout = isTimeout
	}
	return nil
}

type fakePaperStore struct {
	paper    *model.Paper
	sections []model.PaperSection
}

func (f *fakePaperStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Paper, error) {
	if f.paper == nil || f.paper.ID != id {
		return nil, pgx.ErrNoRows
	}
	cp := *f.paper
	return &cp, nil
}

func (f *fakePaperStore) GetSectionByID(ctx context.Context, id uuid.UUID) (*model.PaperSection, error) {
	for _, s := range f.sections {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePaperStore) GetSectionBySeq(ctx context.Context, paperID uuid.UUID, seq int) (*model.PaperSection, error) {
	for _, s := range f.sections {
		if s.PaperID == paperID && s.Seq == seq {
			cp := s
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePaperStore) ListSections(ctx context.Context, paperID uuid.UUID) ([]model.PaperSection, error) {
	out := make([]model.PaperSection, 0, len(f.sections))
	for _, s := range f.sections {
		if s.PaperID == paperID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeScheduleStore struct {
	sessionID uuid.UUID
	rows      map[int]model.ScheduleSection
}

func (f *fakeScheduleStore) GetBySessionSeq(ctx context.Context, sessionID uuid.UUID, seq int) (*model.ScheduleSection, error) {
	row, ok := f.rows[seq]
	if !ok || sessionID != f.sessionID {
		return nil, pgx.ErrNoRows
	}
	cp := row
	return &cp, nil
}

// ─── Fixture ───────────────────────────────────────────────────────────

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type progressFixture struct {
	t         *testing.T
	now       time.Time
	examinee  uuid.UUID
	examID    uuid.UUID
	exams     *fakeExamStore
	sections  *fakeSectionStore
	papers    *fakePaperStore
	schedules *fakeScheduleStore
	svc       *ProgressService
}

// newProgressFixture builds one exam over a paper with the given section
// durations (minutes), no admission windows, clock pinned at testStart.
func newProgressFixture(t *testing.T, durations ...int) *progressFixture {
	t.Helper()

	paperID := uuid.New()
	sessionID := uuid.New()

	paperSections := make([]model.PaperSection, len(durations))
	for i, d := range durations {
		paperSections[i] = model.PaperSection{
			ID:       uuid.New(),
			Seq:      i + 1,
			Name:     fmt.Sprintf("Section %d", i+1),
			Duration: d,
			PaperID:  paperID,
		}
	}

	f := &progressFixture{
		t:        t,
		now:      testStart,
		examinee: uuid.New(),
		examID:   uuid.New(),
		exams:    newFakeExamStore(),
		sections: newFakeSectionStore(),
		papers: &fakePaperStore{
			paper:    &model.Paper{ID: paperID, Title: "Placement Test", SectionNum: len(durations)},
			sections: paperSections,
		},
		schedules: &fakeScheduleStore{sessionID: sessionID, rows: make(map[int]model.ScheduleSection)},
	}

	f.exams.exams[f.examID] = &model.Exam{
		ID:                f.examID,
		Status:            model.ExamStatusNotStarted,
		CurrentSeq:        1,
		ExamineeID:        f.examinee,
		PaperID:           paperID,
		ScheduleSessionID: sessionID,
	}

	f.svc = NewProgressService(f.exams, f.sections, f.papers, f.schedules, zerolog.Nop()).
		WithClock(func() time.Time { return f.now })
	return f
}

func (f *progressFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *progressFixture) schedule(seq int, early, late time.Time) {
	f.schedules.rows[seq] = model.ScheduleSection{
		ID:                uuid.New(),
		Seq:               seq,
		PlanStartEarly:    early,
		PlanStartLate:     late,
		ScheduleSessionID: f.schedules.sessionID,
	}
}

func (f *progressFixture) enterSection(seq int) (*EnterSectionResult, error) {
	return f.svc.EnterSection(context.Background(), f.examinee, &model.EnterSectionRequest{ExamID: f.examID, Seq: seq})
}

// mustStart enters and starts the section at seq, failing the test on error.
func (f *progressFixture) mustStart(seq int) *StartSectionResult {
	f.t.Helper()
	lobby, err := f.enterSection(seq)
	if err != nil {
		f.t.Fatalf("enter section %d: %v", seq, err)
	}
	result, err := f.svc.StartSection(context.Background(), f.examinee, &model.StartSectionRequest{
		ExamID:    f.examID,
		SectionID: lobby.ExamSection.ID,
	})
	if err != nil {
		f.t.Fatalf("start section %d: %v", seq, err)
	}
	return result
}

func (f *progressFixture) storedExam() *model.Exam {
	return f.exams.exams[f.examID]
}

// ─── Tests ─────────────────────────────────────────────────────────────

func TestEnterResolvesExamAndStartsPreparation(t *testing.T) {
	f := newProgressFixture(t, 30, 30)

	result, err := f.svc.Enter(context.Background(), f.examinee)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if result.Exam.Status != model.ExamStatusInPreparation {
		t.Errorf("status = %v, want in_preparation", result.Exam.Status)
	}
	if result.Finished {
		t.Error("Finished = true on a fresh exam")
	}
	if len(result.PaperSections) != 2 {
		t.Errorf("paper sections = %d, want 2", len(result.PaperSections))
	}

	// Re-entry keeps the state.
	again, err := f.svc.Enter(context.Background(), f.examinee)
	if err != nil {
		t.Fatalf("Enter again: %v", err)
	}
	if again.Exam.Status != model.ExamStatusInPreparation {
		t.Errorf("status after re-entry = %v, want in_preparation", again.Exam.Status)
	}
}

func TestEnterWithoutExam(t *testing.T) {
	f := newProgressFixture(t, 30)

	_, err := f.svc.Enter(context.Background(), uuid.New())
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}

func TestEnterSectionCreatesLazily(t *testing.T) {
	f := newProgressFixture(t, 30)

	lobby, err := f.enterSection(1)
	if err != nil {
		t.Fatalf("EnterSection: %v", err)
	}
	if lobby.ExamSection.Status != model.SectionStatusNotStarted {
		t.Errorf("status = %v, want not_started", lobby.ExamSection.Status)
	}
	if lobby.ExamSection.ID == uuid.Nil {
		t.Error("section record was not persisted")
	}

	// Re-entry converges on the same record.
	again, err := f.enterSection(1)
	if err != nil {
		t.Fatalf("EnterSection again: %v", err)
	}
	if again.ExamSection.ID != lobby.ExamSection.ID {
		t.Error("re-entry created a second section record")
	}
}

func TestEnterSectionOrdinalGuards(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	f.mustStart(1)
	if _, err := f.svc.SubmitSection(context.Background(), f.examinee, &model.SubmitSectionRequest{
		ExamID: f.examID, SectionID: f.sections.mustByExamSeq(t, f.examID, 1).ID,
	}); err != nil {
		t.Fatalf("SubmitSection: %v", err)
	}

	if _, err := f.enterSection(1); !errors.Is(err, ErrSectionOver) {
		t.Errorf("past section err = %v, want ErrSectionOver", err)
	}
	if _, err := f.enterSection(5); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("future section err = %v, want ErrSectionNotFound", err)
	}
}

func TestEnterSectionCountdownBeforeWindow(t *testing.T) {
	f := newProgressFixture(t, 30)
	f.schedule(1, testStart.Add(time.Minute), testStart.Add(10*time.Minute))

	lobby, err := f.enterSection(1)
	if err != nil {
		t.Fatalf("EnterSection: %v", err)
	}
	if lobby.StartCountDown != 60 {
		t.Errorf("StartCountDown = %d, want 60", lobby.StartCountDown)
	}
}

func TestStartSectionBeforeWindow(t *testing.T) {
	f := newProgressFixture(t, 30)
	f.schedule(1, testStart.Add(time.Minute), testStart.Add(10*time.Minute))
	lobby, _ := f.enterSection(1)

	_, err := f.svc.StartSection(context.Background(), f.examinee, &model.StartSectionRequest{
		ExamID: f.examID, SectionID: lobby.ExamSection.ID,
	})
	var notOpen *timing.NotOpenError
	if !errors.As(err, &notOpen) {
		t.Fatalf("err = %v, want NotOpenError", err)
	}
	if notOpen.Wait != time.Minute {
		t.Errorf("Wait = %s, want 1m0s", notOpen.Wait)
	}
}

func TestStartSectionAfterWindowSkipsDeadSection(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	f.schedule(1, testStart, testStart.Add(time.Minute))
	lobby, err := f.enterSection(1)
	if err != nil {
		t.Fatalf("EnterSection: %v", err)
	}
	f.advance(2 * time.Minute)

	_, err = f.svc.StartSection(context.Background(), f.examinee, &model.StartSectionRequest{
		ExamID: f.examID, SectionID: lobby.ExamSection.ID,
	})
	if !errors.Is(err, timing.ErrWindowExpired) {
		t.Fatalf("err = %v, want ErrWindowExpired", err)
	}

	// The dead section is closed as a timeout and the exam moved past it.
	stored := f.sections.mustByExamSeq(t, f.examID, 1)
	if !stored.Status.Closed() || !stored.IsTimeout {
		t.Errorf("dead section status=%v timeout=%t, want closed timeout", stored.Status, stored.IsTimeout)
	}
	if f.storedExam().CurrentSeq != 2 {
		t.Errorf("current_seq = %d, want 2", f.storedExam().CurrentSeq)
	}
}

func TestEnterSectionAfterWindowLapsed(t *testing.T) {
	f := newProgressFixture(t, 30)
	f.schedule(1, testStart.Add(-10*time.Minute), testStart.Add(-time.Minute))

	_, err := f.enterSection(1)
	if !errors.Is(err, timing.ErrWindowExpired) {
		t.Fatalf("err = %v, want ErrWindowExpired", err)
	}

	// Single-section paper: skipping the dead section ends the exam.
	exam := f.storedExam()
	if !exam.Status.Closed() || !exam.IsTimeout {
		t.Errorf("exam status=%v timeout=%t, want closed timeout", exam.Status, exam.IsTimeout)
	}
}

func TestStartFirstSectionFlipsExam(t *testing.T) {
	f := newProgressFixture(t, 30, 30)

	result := f.mustStart(1)
	if result.EndCountDown != 30*60 {
		t.Errorf("EndCountDown = %d, want 1800", result.EndCountDown)
	}

	exam := f.storedExam()
	if exam.Status != model.ExamStatusInExam {
		t.Errorf("exam status = %v, want in_exam", exam.Status)
	}
	if exam.ActualStart == nil || !exam.ActualStart.Equal(testStart) {
		t.Errorf("exam actual_start = %v, want %s", exam.ActualStart, testStart)
	}
}

func TestStartSectionIdempotent(t *testing.T) {
	f := newProgressFixture(t, 30)
	first := f.mustStart(1)

	f.advance(10 * time.Second)
	retry, err := f.svc.StartSection(context.Background(), f.examinee, &model.StartSectionRequest{
		ExamID: f.examID, SectionID: first.ExamSection.ID,
	})
	if err != nil {
		t.Fatalf("retry StartSection: %v", err)
	}
	if !retry.ExamSection.ActualStart.Equal(*first.ExamSection.ActualStart) {
		t.Error("retry moved actual_start")
	}
	if retry.EndCountDown != first.EndCountDown-10 {
		t.Errorf("EndCountDown = %d, want %d", retry.EndCountDown, first.EndCountDown-10)
	}
}

func TestStartSectionWithSpentCountdown(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	first := f.mustStart(1)
	f.advance(31 * time.Minute)

	result, err := f.svc.StartSection(context.Background(), f.examinee, &model.StartSectionRequest{
		ExamID: f.examID, SectionID: first.ExamSection.ID,
	})
	if err != nil {
		t.Fatalf("StartSection: %v", err)
	}
	// The spent section is force-closed and left out of the result.
	if result.ExamSection != nil {
		t.Errorf("ExamSection = %+v, want omitted", result.ExamSection)
	}

	stored := f.sections.mustByExamSeq(t, f.examID, 1)
	if !stored.Status.Closed() || !stored.IsTimeout {
		t.Errorf("section status=%v timeout=%t, want closed timeout", stored.Status, stored.IsTimeout)
	}
	if f.storedExam().CurrentSeq != 2 {
		t.Errorf("current_seq = %d, want 2", f.storedExam().CurrentSeq)
	}
}

func TestSectionTimeoutReconciledOnEnter(t *testing.T) {
	f := newProgressFixture(t, 30, 45)
	f.mustStart(1)
	f.advance(31 * time.Minute)

	result, err := f.svc.Enter(context.Background(), f.examinee)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}

	stored := f.sections.mustByExamSeq(t, f.examID, 1)
	if !stored.Status.Closed() || !stored.IsTimeout {
		t.Errorf("section status=%v timeout=%t, want closed timeout", stored.Status, stored.IsTimeout)
	}
	if result.Exam.CurrentSeq != 2 {
		t.Errorf("current_seq = %d, want 2", result.Exam.CurrentSeq)
	}
	if result.Finished {
		t.Error("exam finished with a section still ahead")
	}
}

func TestLastSectionTimeoutClosesExam(t *testing.T) {
	f := newProgressFixture(t, 30)
	f.mustStart(1)
	f.advance(30 * time.Minute)

	result, err := f.svc.Enter(context.Background(), f.examinee)
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if !result.Finished {
		t.Fatal("Finished = false after last-section timeout")
	}
	exam := f.storedExam()
	if !exam.Status.Closed() || !exam.IsTimeout {
		t.Errorf("exam status=%v timeout=%t, want closed timeout", exam.Status, exam.IsTimeout)
	}
}

func TestSubmitSectionAdvances(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	started := f.mustStart(1)

	result, err := f.svc.SubmitSection(context.Background(), f.examinee, &model.SubmitSectionRequest{
		ExamID: f.examID, SectionID: started.ExamSection.ID,
	})
	if err != nil {
		t.Fatalf("SubmitSection: %v", err)
	}
	if result.Finished || result.NextSeq != 2 {
		t.Errorf("result = %+v, want next_seq 2 unfinished", result)
	}

	stored := f.sections.mustByExamSeq(t, f.examID, 1)
	if stored.IsTimeout {
		t.Error("explicit submit flagged as timeout")
	}
}

func TestSubmitLastSectionClosesExam(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	f.mustStart(1)
	f.svc.SubmitSection(context.Background(), f.examinee, &model.SubmitSectionRequest{
		ExamID: f.examID, SectionID: f.sections.mustByExamSeq(t, f.examID, 1).ID,
	})
	started := f.mustStart(2)

	result, err := f.svc.SubmitSection(context.Background(), f.examinee, &model.SubmitSectionRequest{
		ExamID: f.examID, SectionID: started.ExamSection.ID,
	})
	if err != nil {
		t.Fatalf("SubmitSection: %v", err)
	}
	if !result.Finished {
		t.Error("Finished = false after last section submit")
	}
	exam := f.storedExam()
	if !exam.Status.Closed() || exam.IsTimeout {
		t.Errorf("exam status=%v timeout=%t, want closed not timeout", exam.Status, exam.IsTimeout)
	}
}

func TestSubmitSectionIdempotent(t *testing.T) {
	f := newProgressFixture(t, 30, 30)
	started := f.mustStart(1)

	req := &model.SubmitSectionRequest{ExamID: f.examID, SectionID: started.ExamSection.ID}
	if _, err := f.svc.SubmitSection(context.Background(), f.examinee, req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	end := *f.sections.mustByExamSeq(t, f.examID, 1).ActualEnd

	f.advance(time.Minute)
	result, err := f.svc.SubmitSection(context.Background(), f.examinee, req)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if result.NextSeq != 2 {
		t.Errorf("NextSeq = %d, want 2", result.NextSeq)
	}
	if !f.sections.mustByExamSeq(t, f.examID, 1).ActualEnd.Equal(end) {
		t.Error("retry moved actual_end")
	}
}

func TestSubmitExamIdempotent(t *testing.T) {
	f := newProgressFixture(t, 30)
	started := f.mustStart(1)

	req := &model.SubmitExamRequest{ExamID: f.examID, SectionID: &started.ExamSection.ID}
	exam, err := f.svc.SubmitExam(context.Background(), f.examinee, req)
	if err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}
	if !exam.Status.Closed() {
		t.Fatal("exam not closed")
	}
	end := *f.storedExam().ActualEnd

	f.advance(time.Minute)
	if _, err := f.svc.SubmitExam(context.Background(), f.examinee, req); err != nil {
		t.Fatalf("second SubmitExam: %v", err)
	}
	if !f.storedExam().ActualEnd.Equal(end) {
		t.Error("retry moved exam actual_end")
	}
}

func TestForeignExamIndistinguishableFromAbsent(t *testing.T) {
	f := newProgressFixture(t, 30)
	stranger := uuid.New()

	if _, err := f.svc.EnterSection(context.Background(), stranger, &model.EnterSectionRequest{
		ExamID: f.examID, Seq: 1,
	}); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("foreign EnterSection err = %v, want ErrExamNotFound", err)
	}

	started := f.mustStart(1)
	if _, err := f.svc.StartSection(context.Background(), stranger, &model.StartSectionRequest{
		ExamID: f.examID, SectionID: started.ExamSection.ID,
	}); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("foreign StartSection err = %v, want ErrExamNotFound", err)
	}
}

func TestClosedExamRejectsEntry(t *testing.T) {
	f := newProgressFixture(t, 30)
	f.mustStart(1)
	if _, err := f.svc.SubmitExam(context.Background(), f.examinee, &model.SubmitExamRequest{ExamID: f.examID}); err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}

	if _, err := f.enterSection(1); !errors.Is(err, ErrExamOver) {
		t.Errorf("EnterSection on closed exam err = %v, want ErrExamOver", err)
	}
}

// mustByExamSeq fetches a stored section record or fails the test.
func (f *fakeSectionStore) mustByExamSeq(t *testing.T, examID uuid.UUID, seq int) *model.ExamSection {
	t.Helper()
	s, err := f.GetByExamSeq(context.Background(), examID, seq)
	if err != nil {
		t.Fatalf("section (%s, %d) not stored: %v", examID, seq, err)
	}
	return s
}
