package app

import (
	"testing"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

func TestDueDate_ZeroDays(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := dueDate(start, 0, domain.DeadlineCalendarDays); got != nil {
		t.Errorf("dueDate(0 days) = %v, want nil", got)
	}
	if got := dueDate(start, -1, domain.DeadlineBusinessDays); got != nil {
		t.Errorf("dueDate(-1 days) = %v, want nil", got)
	}
}

func TestDueDate_CalendarDays(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got := dueDate(start, 7, domain.DeadlineCalendarDays)
	if got == nil {
		t.Fatal("dueDate returned nil")
	}
	want := start.AddDate(0, 0, 7)
	if !got.Equal(want) {
		t.Errorf("dueDate = %v, want %v", got, want)
	}
}

func TestDueDate_BusinessDays(t *testing.T) {
	start := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		days  int
		total int
	}{
		{days: 1, total: 1},
		{days: 4, total: 4},
		{days: 5, total: 7},
		{days: 9, total: 11},
		{days: 10, total: 14},
		{days: 22, total: 30},
	}

	for _, tt := range tests {
		got := dueDate(start, tt.days, domain.DeadlineBusinessDays)
		if got == nil {
			t.Fatalf("dueDate(%d business days) returned nil", tt.days)
		}
		want := start.AddDate(0, 0, tt.total)
		if !got.Equal(want) {
			t.Errorf("dueDate(%d business days) = %v, want %v (+%d calendar days)",
				tt.days, got, want, tt.total)
		}
	}
}
