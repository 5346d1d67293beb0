package app

import (
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// dueDate computes an action instance's due date from a template deadline.
// A zero-day deadline means no due date. The business-day variant pads two
// weekend days for every five working days (N + 2*(N/5) calendar days)
// instead of walking the calendar day by day; the padding is the behavior
// the workflow has always run with, so it is kept as is even though it
// drifts from an exact business-day count near week boundaries.
func dueDate(start time.Time, days int, kind domain.DeadlineKind) *time.Time {
	if days <= 0 {
		return nil
	}

	total := days
	if kind == domain.DeadlineBusinessDays {
		total += (days / 5) * 2
	}

	due := start.AddDate(0, 0, total)
	return &due
}
