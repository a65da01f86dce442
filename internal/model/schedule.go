package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleSession is one sitting of a paper inside a schedule. Exams are
// assigned against a session; its plan_start orders an examinee's exams
// when resolving the next unclosed one.
type ScheduleSession struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PlanStart  time.Time `json:"plan_start"`
	PlanEnd    time.Time `json:"plan_end"`
	PaperID    uuid.UUID `json:"paper_id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScheduleSection is the administrator-defined admission window for a
// given section ordinal within a session. Read-only to the state machine.
type ScheduleSection struct {
	ID                uuid.UUID `json:"id"`
	Seq               int       `json:"seq"`
	PlanStartEarly    time.Time `json:"plan_start_early"`
	PlanStartLate     time.Time `json:"plan_start_late"`
	ScheduleSessionID uuid.UUID `json:"schedule_session_id"`
	CreatedAt         time.Time `json:"created_at"`
}
