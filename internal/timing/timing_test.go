package timing

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestAdmitBeforeWindow(t *testing.T) {
	w := Window{Earliest: base, Latest: base.Add(10 * time.Minute)}

	err := w.Admit(base.Add(-time.Minute))
	var notOpen *NotOpenError
	if !errors.As(err, &notOpen) {
		t.Fatalf("expected NotOpenError, got %v", err)
	}
	if notOpen.Wait != time.Minute {
		t.Errorf("Wait = %s, want 1m0s", notOpen.Wait)
	}
}

func TestAdmitInsideWindow(t *testing.T) {
	w := Window{Earliest: base, Latest: base.Add(10 * time.Minute)}

	for _, now := range []time.Time{base, base.Add(5 * time.Minute), base.Add(10 * time.Minute)} {
		if err := w.Admit(now); err != nil {
			t.Errorf("Admit(%s) = %v, want nil", now, err)
		}
	}
}

func TestAdmitAfterWindow(t *testing.T) {
	w := Window{Earliest: base, Latest: base.Add(10 * time.Minute)}

	err := w.Admit(base.Add(10*time.Minute + time.Second))
	if !errors.Is(err, ErrWindowExpired) {
		t.Fatalf("expected ErrWindowExpired, got %v", err)
	}
}

func TestStartCountdown(t *testing.T) {
	w := Window{Earliest: base, Latest: base.Add(10 * time.Minute)}

	if got := w.StartCountdown(base.Add(-90 * time.Second)); got != 90*time.Second {
		t.Errorf("StartCountdown = %s, want 1m30s", got)
	}
	if got := w.StartCountdown(base.Add(time.Minute)); got != 0 {
		t.Errorf("StartCountdown inside window = %s, want 0", got)
	}
}

func TestRemainingClampsAtZero(t *testing.T) {
	duration := SectionDuration(30)

	if got := Remaining(base, duration, base.Add(10*time.Minute)); got != 20*time.Minute {
		t.Errorf("Remaining = %s, want 20m0s", got)
	}
	if got := Remaining(base, duration, base.Add(45*time.Minute)); got != 0 {
		t.Errorf("Remaining past deadline = %s, want 0", got)
	}
}

func TestCheckTimeout(t *testing.T) {
	duration := SectionDuration(30)

	if _, expired := timeoutAt(base.Add(29 * time.Minute)); expired {
		t.Error("expired before deadline")
	}

	ev, expired := timeoutAt(base.Add(30 * time.Minute))
	if !expired {
		t.Fatal("not expired at deadline")
	}
	if !ev.Deadline.Equal(base.Add(duration)) {
		t.Errorf("Deadline = %s, want %s", ev.Deadline, base.Add(duration))
	}

	late := base.Add(2 * time.Hour)
	ev, expired = timeoutAt(late)
	if !expired {
		t.Fatal("not expired well past deadline")
	}
	if !ev.At.Equal(late) {
		t.Errorf("At = %s, want the observing instant %s", ev.At, late)
	}
}

func timeoutAt(now time.Time) (CloseEvent, bool) {
	return CheckTimeout(base, SectionDuration(30), now)
}
