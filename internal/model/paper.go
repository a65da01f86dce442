package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType int16

const (
	QuestionTypeSingleChoice       QuestionType = 1
	QuestionTypeTrueFalse          QuestionType = 2
	QuestionTypeMultipleChoice     QuestionType = 3
	QuestionTypeIndefiniteMultiple QuestionType = 4
	QuestionTypeFillInTheBlank     QuestionType = 5
	QuestionTypeWriting            QuestionType = 6
	QuestionTypeListening          QuestionType = 7
	QuestionTypeSpeaking           QuestionType = 8
)

// Paper is the administratively authored content descriptor for a whole
// exam paper. Read-only to the progression logic.
type Paper struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Note        string       `json:"note,omitempty"`
	PaperType   int16        `json:"paper_type"`
	SectionNum  int          `json:"section_num"`
	QuestionNum int          `json:"question_num"`
	QuestionType QuestionType `json:"question_type"`
	FullScore   *float64     `json:"full_score,omitempty"`
	PassScore   *float64     `json:"pass_score,omitempty"`
	Duration    int          `json:"duration"`
	CreatedAt   time.Time    `json:"created_at"`
}

// PaperSection defines one ordinal section's content and duration.
// Duration (minutes) supplies the section expiry: actual_start + duration.
type PaperSection struct {
	ID          uuid.UUID    `json:"id"`
	Seq         int          `json:"seq"`
	Name        string       `json:"name"`
	Content     string       `json:"content,omitempty"`
	Duration    int          `json:"duration"`
	QuestionNum int          `json:"question_num"`
	QuestionType QuestionType `json:"question_type"`
	PaperID     uuid.UUID    `json:"paper_id"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Question is one question inside a paper section.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	Seq            int          `json:"seq"`
	Content        string       `json:"content"`
	QuestionType   QuestionType `json:"question_type"`
	PaperID        uuid.UUID    `json:"paper_id"`
	PaperSectionID uuid.UUID    `json:"paper_section_id"`
	CreatedAt      time.Time    `json:"created_at"`
}

// QuestionOption is one answer option. Correctness metadata is only ever
// served to graders; exam-time reads strip it (or, for fill-in-the-blank,
// strip the content, which would reveal the accepted answers).
type QuestionOption struct {
	ID         uuid.UUID `json:"id"`
	Seq        int       `json:"seq"`
	Content    *string   `json:"content,omitempty"`
	IsCorrect  *bool     `json:"is_correct,omitempty"`
	CorrectSeq *int16    `json:"correct_seq,omitempty"`
	QuestionID uuid.UUID `json:"question_id"`
}

// RedactForExam removes whatever would leak the answer key from an option,
// depending on the question type it belongs to.
func (o *QuestionOption) RedactForExam(qt QuestionType) {
	if qt == QuestionTypeFillInTheBlank {
		o.Content = nil
		return
	}
	o.IsCorrect = nil
	o.CorrectSeq = nil
}
