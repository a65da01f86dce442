package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/timing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ─── Fakes ─────────────────────────────────────────────────────────────

type fakeQuestionStore struct {
	questions []model.Question
	options   map[uuid.UUID][]model.QuestionOption
}

func (f *fakeQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			cp := q
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeQuestionStore) GetBySectionSeq(ctx context.Context, paperID, paperSectionID uuid.UUID, seq int) (*model.Question, error) {
	for _, q := range f.questions {
		if q.PaperID == paperID && q.PaperSectionID == paperSectionID && q.Seq == seq {
			cp := q
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeQuestionStore) ListBySection(ctx context.Context, paperSectionID uuid.UUID) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f.questions {
		if q.PaperSectionID == paperSectionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionStore) ListOptions(ctx context.Context, questionID uuid.UUID) ([]model.QuestionOption, error) {
	// Copies, like rows scanned from the database.
	return append([]model.QuestionOption(nil), f.options[questionID]...), nil
}

func (f *fakeQuestionStore) ListOptionsByQuestions(ctx context.Context, questionIDs []uuid.UUID) ([]model.QuestionOption, error) {
	var out []model.QuestionOption
	for _, id := range questionIDs {
		out = append(out, f.options[id]...)
	}
	return out, nil
}

type fakeAnswerStore struct {
	answers map[uuid.UUID]*model.ExamAnswer
}

func newFakeAnswerStore() *fakeAnswerStore {
	return &fakeAnswerStore{answers: make(map[uuid.UUID]*model.ExamAnswer)}
}

func (f *fakeAnswerStore) GetByID(ctx context.Context, id uuid.UUID, examineeID uuid.UUID) (*model.ExamAnswer, error) {
	a, ok := f.answers[id]
	if !ok || a.ExamineeID != examineeID {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnswerStore) GetByExamineeQuestion(ctx context.Context, examineeID, questionID uuid.UUID) (*model.ExamAnswer, error) {
	for _, a := range f.answers {
		if a.ExamineeID == examineeID && a.QuestionID == questionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAnswerStore) Upsert(ctx context.Context, a *model.ExamAnswer) error {
	for _, existing := range f.answers {
		if existing.ExamineeID == a.ExamineeID && existing.QuestionID == a.QuestionID {
			// Mirror the conflict clause: empty text never wipes stored text.
			if a.Answer != "" {
				existing.Answer = a.Answer
			}
			*a = *existing
			return nil
		}
	}
	a.ID = uuid.New()
	cp := *a
	f.answers[a.ID] = &cp
	return nil
}

func (f *fakeAnswerStore) UpdateAnswer(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, answer string) error {
	if a, ok := f.answers[id]; ok && a.ExamineeID == examineeID {
		a.Answer = answer
	}
	return nil
}

func (f *fakeAnswerStore) SetMarked(ctx context.Context, id uuid.UUID, examineeID uuid.UUID, marked bool) error {
	if a, ok := f.answers[id]; ok && a.ExamineeID == examineeID {
		a.Marked = marked
	}
	return nil
}

// ─── Fixture ───────────────────────────────────────────────────────────

type answerFixture struct {
	*progressFixture
	questions *fakeQuestionStore
	answers   *fakeAnswerStore
	asvc      *AnswerService
	sectionID uuid.UUID
	q1, q2    model.Question
}

// newAnswerFixture builds a one-section exam with a single-choice and a
// fill-in-the-blank question. With start=true the section clock is running.
func newAnswerFixture(t *testing.T, start bool) *answerFixture {
	t.Helper()

	pf := newProgressFixture(t, 30)
	ps := pf.papers.sections[0]

	q1 := model.Question{
		ID: uuid.New(), Seq: 1, Content: "Pick the synonym of rapid.",
		QuestionType: model.QuestionTypeSingleChoice,
		PaperID:      ps.PaperID, PaperSectionID: ps.ID,
	}
	q2 := model.Question{
		ID: uuid.New(), Seq: 2, Content: "The capital of France is ___.",
		QuestionType: model.QuestionTypeFillInTheBlank,
		PaperID:      ps.PaperID, PaperSectionID: ps.ID,
	}

	f := &answerFixture{
		progressFixture: pf,
		answers:         newFakeAnswerStore(),
		q1:              q1,
		q2:              q2,
		questions: &fakeQuestionStore{
			questions: []model.Question{q1, q2},
			options: map[uuid.UUID][]model.QuestionOption{
				q1.ID: {
					{ID: uuid.New(), Seq: 1, Content: strPtr("quick"), IsCorrect: boolPtr(true), QuestionID: q1.ID},
					{ID: uuid.New(), Seq: 2, Content: strPtr("slow"), IsCorrect: boolPtr(false), QuestionID: q1.ID},
				},
				q2.ID: {
					{ID: uuid.New(), Seq: 1, Content: strPtr("Paris"), QuestionID: q2.ID},
				},
			},
		},
	}

	f.asvc = NewAnswerService(pf.exams, pf.sections, pf.papers, f.questions, f.answers, zerolog.Nop()).
		WithClock(func() time.Time { return pf.now })

	if start {
		f.sectionID = pf.mustStart(1).ExamSection.ID
	} else {
		lobby, err := pf.enterSection(1)
		if err != nil {
			t.Fatalf("enter section: %v", err)
		}
		f.sectionID = lobby.ExamSection.ID
	}
	return f
}

func (f *answerFixture) save(req *model.SaveAnswerRequest) (*model.ExamAnswer, error) {
	req.ExamID = f.examID
	req.ExamSectionID = f.sectionID
	return f.asvc.SaveAnswer(context.Background(), f.examinee, req)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// ─── Tests ─────────────────────────────────────────────────────────────

func TestSaveAnswerCreatesAndConverges(t *testing.T) {
	f := newAnswerFixture(t, true)

	first, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}
	if first.ID == uuid.Nil || first.Answer != "quick" {
		t.Fatalf("answer = %+v, want persisted with text", first)
	}
	if first.IsCorrect != nil || first.Score != nil {
		t.Error("correctness fields leaked on save")
	}

	// A retry without the ID converges on the same logical row.
	retry, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "slow"})
	if err != nil {
		t.Fatalf("retry SaveAnswer: %v", err)
	}
	if retry.ID != first.ID {
		t.Error("retry created a second answer row")
	}
	if retry.Answer != "slow" {
		t.Errorf("retry answer = %q, want overwritten", retry.Answer)
	}

	// An edit via the carried-back ID updates in place.
	edited, err := f.save(&model.SaveAnswerRequest{ExamAnswerID: &first.ID, QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if err != nil {
		t.Fatalf("edit SaveAnswer: %v", err)
	}
	if edited.ID != first.ID || edited.Answer != "quick" {
		t.Errorf("edit = %+v, want same row updated", edited)
	}
	if len(f.answers.answers) != 1 {
		t.Errorf("stored rows = %d, want 1", len(f.answers.answers))
	}
}

func TestSaveAnswerBeforeSectionStarts(t *testing.T) {
	f := newAnswerFixture(t, false)

	_, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if !errors.Is(err, ErrNotInExam) {
		t.Fatalf("err = %v, want ErrNotInExam", err)
	}
}

func TestSaveAnswerAfterDeadline(t *testing.T) {
	f := newAnswerFixture(t, true)
	f.advance(timing.SectionDuration(30))

	_, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if !errors.Is(err, ErrSectionOver) {
		t.Fatalf("err = %v, want ErrSectionOver", err)
	}
	if len(f.answers.answers) != 0 {
		t.Error("late save was persisted")
	}
}

func TestSaveAnswerAfterExamSubmit(t *testing.T) {
	f := newAnswerFixture(t, true)
	if _, err := f.svc.SubmitExam(context.Background(), f.examinee, &model.SubmitExamRequest{ExamID: f.examID}); err != nil {
		t.Fatalf("SubmitExam: %v", err)
	}

	_, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if !errors.Is(err, ErrExamOver) {
		t.Fatalf("err = %v, want ErrExamOver", err)
	}
}

func TestMarkCreatesEmptyAnswer(t *testing.T) {
	f := newAnswerFixture(t, true)

	marked, err := f.asvc.Mark(context.Background(), f.examinee, &model.MarkRequest{
		ExamID:        f.examID,
		ExamSectionID: f.sectionID,
		QuestionID:    f.q2.ID,
		Marked:        boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if !marked.Marked || marked.Answer != "" {
		t.Errorf("answer = %+v, want empty marked row", marked)
	}
	if marked.Seq != f.q2.Seq {
		t.Errorf("seq = %d, want question seq %d", marked.Seq, f.q2.Seq)
	}

	// Unmark through the same path.
	unmarked, err := f.asvc.Mark(context.Background(), f.examinee, &model.MarkRequest{
		ExamID:        f.examID,
		ExamSectionID: f.sectionID,
		QuestionID:    f.q2.ID,
		Marked:        boolPtr(false),
	})
	if err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if unmarked.ID != marked.ID || unmarked.Marked {
		t.Errorf("unmark = %+v, want same row unmarked", unmarked)
	}
}

func TestMarkDoesNotWipeAnswerText(t *testing.T) {
	f := newAnswerFixture(t, true)
	saved, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"})
	if err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	marked, err := f.asvc.Mark(context.Background(), f.examinee, &model.MarkRequest{
		ExamID:        f.examID,
		ExamSectionID: f.sectionID,
		QuestionID:    f.q1.ID,
		Marked:        boolPtr(true),
	})
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if marked.ID != saved.ID {
		t.Error("mark created a second row for an answered question")
	}
	if marked.Answer != "quick" {
		t.Errorf("answer text = %q, want preserved", marked.Answer)
	}
}

func TestQuestionRedactsChoiceOptions(t *testing.T) {
	f := newAnswerFixture(t, true)
	if _, err := f.save(&model.SaveAnswerRequest{QuestionID: f.q1.ID, QuestionSeq: 1, Answer: "quick"}); err != nil {
		t.Fatalf("SaveAnswer: %v", err)
	}

	view, err := f.asvc.Question(context.Background(), f.examinee, &model.QuestionRequest{
		SectionID: f.sectionID, Seq: 1,
	})
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if len(view.Options) != 2 {
		t.Fatalf("options = %d, want 2", len(view.Options))
	}
	for _, o := range view.Options {
		if o.IsCorrect != nil || o.CorrectSeq != nil {
			t.Errorf("option %d leaks the answer key", o.Seq)
		}
		if o.Content == nil {
			t.Errorf("option %d lost its content", o.Seq)
		}
	}
	if view.Answer == nil || view.Answer.Answer != "quick" {
		t.Errorf("answer = %+v, want the saved answer attached", view.Answer)
	}
	if view.Answer.IsCorrect != nil {
		t.Error("attached answer leaks correctness")
	}
}

func TestQuestionRedactsFillInTheBlank(t *testing.T) {
	f := newAnswerFixture(t, true)

	view, err := f.asvc.Question(context.Background(), f.examinee, &model.QuestionRequest{
		SectionID: f.sectionID, Seq: 2,
	})
	if err != nil {
		t.Fatalf("Question: %v", err)
	}
	if len(view.Options) != 1 {
		t.Fatalf("options = %d, want 1", len(view.Options))
	}
	// Fill-in-the-blank option content IS the accepted answer.
	if view.Options[0].Content != nil {
		t.Error("fill-in-the-blank option content leaked")
	}
	if view.Answer != nil {
		t.Error("answer attached for an unanswered question")
	}
}

func TestSectionQuestionsRedacted(t *testing.T) {
	f := newAnswerFixture(t, true)

	views, err := f.asvc.SectionQuestions(context.Background(), f.examinee, &model.SectionQuestionsRequest{
		ExamID: f.examID, SectionID: f.sectionID,
	})
	if err != nil {
		t.Fatalf("SectionQuestions: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("questions = %d, want 2", len(views))
	}
	for _, v := range views {
		for _, o := range v.Options {
			if o.IsCorrect != nil || o.CorrectSeq != nil {
				t.Errorf("question %d option %d leaks the answer key", v.Question.Seq, o.Seq)
			}
			if v.Question.QuestionType == model.QuestionTypeFillInTheBlank && o.Content != nil {
				t.Errorf("question %d fill-in-the-blank content leaked", v.Question.Seq)
			}
		}
	}
}
