package domain

import (
	"fmt"
	"time"
)

// TimesheetEntry records time worked on a case by one professional.
type TimesheetEntry struct {
	ID           string
	CaseID       string
	WorkedOn     time.Time
	Professional string // user ID
	Duration     time.Duration
	Description  string
	CreatedAt    time.Time
}

// FormatDuration renders a duration as HH:MM, the format used across
// timesheet listings and log entries.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/3600, (total%3600)/60)
}
