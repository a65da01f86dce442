package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam is one examinee's attempt at one scheduled paper. At most one
// non-closed exam exists per examinee at any time; the progression
// controller resolves it by query rather than by primary key.
type Exam struct {
	ID                uuid.UUID  `json:"id"`
	Status            ExamStatus `json:"status"`
	CurrentSeq        int        `json:"current_seq"`
	ActualStart       *time.Time `json:"actual_start,omitempty"`
	ActualEnd         *time.Time `json:"actual_end,omitempty"`
	IsTimeout         bool       `json:"is_timeout"`
	Score             *float64   `json:"score,omitempty"`
	IsPassed          *bool      `json:"is_passed,omitempty"`
	ExamineeID        uuid.UUID  `json:"examinee_id"`
	PaperID           uuid.UUID  `json:"paper_id"`
	ScheduleSessionID uuid.UUID  `json:"schedule_session_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ExamSection is the runtime instance of one ordinal section within an
// exam attempt, created lazily on first entry. actual_start is written
// exactly once, at the moment admission succeeds.
type ExamSection struct {
	ID                uuid.UUID     `json:"id"`
	Name              string        `json:"name"`
	Seq               int           `json:"seq"`
	Status            SectionStatus `json:"status"`
	ActualStart       *time.Time    `json:"actual_start,omitempty"`
	ActualEnd         *time.Time    `json:"actual_end,omitempty"`
	IsTimeout         bool          `json:"is_timeout"`
	ExamineeID        uuid.UUID     `json:"examinee_id"`
	ExamID            uuid.UUID     `json:"exam_id"`
	PaperID           uuid.UUID     `json:"paper_id"`
	PaperSectionID    uuid.UUID     `json:"paper_section_id"`
	ScheduleSessionID uuid.UUID     `json:"schedule_session_id"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// EnterSectionRequest is the payload for entering a section lobby.
type EnterSectionRequest struct {
	ExamID uuid.UUID `json:"exam_id" binding:"required"`
	Seq    int       `json:"seq" binding:"required,min=1"`
}

// StartSectionRequest is the payload for starting a section's clock.
type StartSectionRequest struct {
	ExamID    uuid.UUID `json:"exam_id" binding:"required"`
	SectionID uuid.UUID `json:"section_id" binding:"required"`
}

// SubmitSectionRequest is the payload for explicitly submitting a section.
type SubmitSectionRequest struct {
	ExamID      uuid.UUID `json:"exam_id" binding:"required"`
	SectionID   uuid.UUID `json:"section_id" binding:"required"`
	LastSection bool      `json:"last_section"`
}

// SubmitExamRequest is the payload for explicitly submitting the exam.
// SectionID optionally closes the section the client is currently in.
type SubmitExamRequest struct {
	ExamID    uuid.UUID  `json:"exam_id" binding:"required"`
	SectionID *uuid.UUID `json:"section_id"`
}
