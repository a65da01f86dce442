package model

// ExamStatus is the lifecycle state of a whole exam attempt.
type ExamStatus int16

const (
	ExamStatusNotStarted    ExamStatus = 0
	ExamStatusInPreparation ExamStatus = 1
	ExamStatusInExam        ExamStatus = 2
	ExamStatusClosed        ExamStatus = 3
)

// Closed reports whether the exam reached its terminal state.
func (s ExamStatus) Closed() bool {
	return s == ExamStatusClosed
}

func (s ExamStatus) String() string {
	switch s {
	case ExamStatusNotStarted:
		return "not_started"
	case ExamStatusInPreparation:
		return "in_preparation"
	case ExamStatusInExam:
		return "in_exam"
	case ExamStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SectionStatus is the lifecycle state of one exam section. Sections have
// no preparation phase: entry creates them NOT_STARTED and admission moves
// them straight to IN_EXAM.
type SectionStatus int16

const (
	SectionStatusNotStarted SectionStatus = 0
	SectionStatusInExam     SectionStatus = 2
	SectionStatusClosed     SectionStatus = 3
)

// Closed reports whether the section reached its terminal state.
func (s SectionStatus) Closed() bool {
	return s == SectionStatusClosed
}

func (s SectionStatus) String() string {
	switch s {
	case SectionStatusNotStarted:
		return "not_started"
	case SectionStatusInExam:
		return "in_exam"
	case SectionStatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}
