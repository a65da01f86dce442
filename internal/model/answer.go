package model

import (
	"time"

	"github.com/google/uuid"
)

// AnswerCorrectness grades an answer: 0 wrong, 1 half correct, 2 all correct.
// Grading happens outside this service; mid-exam reads never expose it.
type AnswerCorrectness int16

const (
	AnswerWrong       AnswerCorrectness = 0
	AnswerHalfCorrect AnswerCorrectness = 1
	AnswerAllCorrect  AnswerCorrectness = 2
)

// ExamAnswer is the single logical answer record for one (examinee,
// question) pair, attached to the section that was open when it was first
// written. The client carries the ID back on subsequent saves; the storage
// layer additionally enforces uniqueness on (examinee_id, question_id).
type ExamAnswer struct {
	ID            uuid.UUID          `json:"id"`
	Seq           int                `json:"seq"`
	Answer        string             `json:"answer"`
	Marked        bool               `json:"marked"`
	IsCorrect     *AnswerCorrectness `json:"is_correct,omitempty"`
	Score         *float64           `json:"score,omitempty"`
	QuestionID    uuid.UUID          `json:"question_id"`
	ExamineeID    uuid.UUID          `json:"examinee_id"`
	ExamSectionID uuid.UUID          `json:"exam_section_id"`
	ExamID        uuid.UUID          `json:"exam_id"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Redacted strips correctness fields before an answer is served back to
// its owner mid-exam.
func (a *ExamAnswer) Redacted() *ExamAnswer {
	if a == nil {
		return nil
	}
	clone := *a
	clone.IsCorrect = nil
	clone.Score = nil
	return &clone
}

// SaveAnswerRequest is the payload for creating or overwriting an answer.
// ExamAnswerID is absent on the first save; the client passes back the
// identity it received on every retry and subsequent edit.
type SaveAnswerRequest struct {
	ExamAnswerID  *uuid.UUID `json:"exam_answer_id"`
	ExamID        uuid.UUID  `json:"exam_id" binding:"required"`
	ExamSectionID uuid.UUID  `json:"exam_section_id" binding:"required"`
	QuestionID    uuid.UUID  `json:"question_id" binding:"required"`
	QuestionSeq   int        `json:"question_seq" binding:"required,min=1"`
	Answer        string     `json:"answer"`
}

// MarkRequest toggles the marked-for-review flag on an answer, creating
// an empty answer row first when none exists yet.
type MarkRequest struct {
	ExamAnswerID  *uuid.UUID `json:"exam_answer_id"`
	ExamID        uuid.UUID  `json:"exam_id" binding:"required"`
	ExamSectionID uuid.UUID  `json:"exam_section_id" binding:"required"`
	QuestionID    uuid.UUID  `json:"question_id" binding:"required"`
	Marked        *bool      `json:"marked" binding:"required"`
}

// QuestionRequest fetches one question (with redacted options) by its
// sequence inside an exam section.
type QuestionRequest struct {
	SectionID uuid.UUID `json:"section_id" binding:"required"`
	Seq       int       `json:"seq" binding:"required,min=1"`
}

// SectionQuestionsRequest lists every question of a section at once.
type SectionQuestionsRequest struct {
	ExamID    uuid.UUID `json:"exam_id" binding:"required"`
	SectionID uuid.UUID `json:"section_id" binding:"required"`
}
