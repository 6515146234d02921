package appointment

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, true},
		{StatusScheduled, StatusNoShow, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusNoShow, StatusCompleted, false},
		{StatusCancelled, StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !IsTerminal(status) {
			t.Errorf("expected %s to be terminal", status)
		}
	}
	for _, status := range []string{StatusScheduled, StatusConfirmed} {
		if IsTerminal(status) {
			t.Errorf("expected %s to be non-terminal", status)
		}
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &Appointment{ScheduledAt: base, DurationMinutes: 30}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", base, base.Add(30 * time.Minute), true},
		{"partial overlap", base.Add(15 * time.Minute), base.Add(45 * time.Minute), true},
		{"contained", base.Add(10 * time.Minute), base.Add(20 * time.Minute), true},
		{"back to back after", base.Add(30 * time.Minute), base.Add(60 * time.Minute), false},
		{"back to back before", base.Add(-30 * time.Minute), base, false},
		{"disjoint", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}
	for _, tc := range cases {
		if got := a.Overlaps(tc.start, tc.end); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEnd(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	a := &Appointment{ScheduledAt: base, DurationMinutes: 45}
	if !a.End().Equal(base.Add(45 * time.Minute)) {
		t.Errorf("unexpected end: %v", a.End())
	}
}
