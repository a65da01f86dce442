// Package timing implements the admission-window and timeout rules for
// exam sections as pure wall-clock functions. Timeouts are detected
// lazily on read paths; there is deliberately no scheduler here.
package timing

import (
	"errors"
	"fmt"
	"time"
)

// ErrWindowExpired means the latest allowed start instant has passed.
// The section can no longer be started and must be skipped.
var ErrWindowExpired = errors.New("section start window has passed")

// NotOpenError means admission was attempted before the earliest allowed
// start. Wait is the remaining time until the window opens.
type NotOpenError struct {
	Wait time.Duration
}

func (e *NotOpenError) Error() string {
	return fmt.Sprintf("section start window opens in %s", e.Wait)
}

// Window is the administratively fixed [earliest, latest] interval during
// which a section may be started, resolved from a ScheduleSection.
type Window struct {
	Earliest time.Time
	Latest   time.Time
}

// Admit decides whether a section may start at now. It returns nil when
// Earliest <= now <= Latest, *NotOpenError when now is too early, and
// ErrWindowExpired when now is too late.
func (w Window) Admit(now time.Time) error {
	if now.Before(w.Earliest) {
		return &NotOpenError{Wait: w.Earliest.Sub(now)}
	}
	if now.After(w.Latest) {
		return ErrWindowExpired
	}
	return nil
}

// StartCountdown returns the time left until the window opens, or zero if
// it is already open.
func (w Window) StartCountdown(now time.Time) time.Duration {
	if wait := w.Earliest.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// SectionDuration converts a paper section's duration in minutes.
func SectionDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// Deadline is the instant a started section expires.
func Deadline(actualStart time.Time, duration time.Duration) time.Time {
	return actualStart.Add(duration)
}

// Remaining returns the live countdown for a started section, clamped at
// zero. A zero result means the section must be force-closed.
func Remaining(actualStart time.Time, duration time.Duration, now time.Time) time.Duration {
	left := Deadline(actualStart, duration).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// CloseEvent describes a timeout-driven closure detected on a read path.
type CloseEvent struct {
	// At is the instant the closure is applied (the observing read's now,
	// not the theoretical deadline).
	At time.Time
	// Deadline is the instant the section actually expired.
	Deadline time.Time
}

// CheckTimeout is the lazy timeout detector: given a started section's
// actual_start and duration it reports whether now is past the deadline,
// returning the close event to apply. Callers invoke it on every read of
// a running section.
func CheckTimeout(actualStart time.Time, duration time.Duration, now time.Time) (CloseEvent, bool) {
	deadline := Deadline(actualStart, duration)
	if now.Before(deadline) {
		return CloseEvent{}, false
	}
	return CloseEvent{At: now, Deadline: deadline}, true
}
