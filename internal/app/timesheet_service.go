package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// TimesheetService manages per-case time entries. Every new entry also
// leaves a formatted summary in the case log, so the log doubles as the
// case's activity feed.
type TimesheetService struct {
	entries domain.TimesheetRepository
	cases   domain.CaseRepository
	catalog domain.CatalogRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewTimesheetService creates a service with the given adapters.
func NewTimesheetService(entries domain.TimesheetRepository, cases domain.CaseRepository, catalog domain.CatalogRepository, logger *slog.Logger) *TimesheetService {
	return &TimesheetService{
		entries: entries,
		cases:   cases,
		catalog: catalog,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Add records a time entry and appends its summary to the case log.
func (s *TimesheetService) Add(ctx context.Context, caseID string, workedOn time.Time, professionalID string, duration time.Duration, description string) (domain.TimesheetEntry, error) {
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return domain.TimesheetEntry{}, err
	}
	professional, err := s.catalog.GetUser(ctx, professionalID)
	if err != nil {
		return domain.TimesheetEntry{}, fmt.Errorf("loading professional: %w", err)
	}

	id, err := newID()
	if err != nil {
		return domain.TimesheetEntry{}, fmt.Errorf("generating entry id: %w", err)
	}

	entry := domain.TimesheetEntry{
		ID:           id,
		CaseID:       caseID,
		WorkedOn:     workedOn,
		Professional: professional.ID,
		Duration:     duration,
		Description:  description,
		CreatedAt:    s.now(),
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return domain.TimesheetEntry{}, fmt.Errorf("creating timesheet entry: %w", err)
	}

	summary := fmt.Sprintf(
		"--- Timesheet ---\nDate: %s\nProfessional: %s\nTime: %s\nDescription: %s",
		workedOn.Format("02/01/2006"),
		professional.DisplayName(),
		domain.FormatDuration(duration),
		description,
	)
	logID, err := newID()
	if err == nil {
		author := professional.ID
		err = s.cases.AppendLog(ctx, domain.CaseLogEntry{
			ID:           logID,
			CaseID:       caseID,
			Date:         workedOn,
			Description:  summary,
			AuthorUserID: &author,
			CreatedAt:    s.now(),
		})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "appending timesheet log entry", "case_id", caseID, "error", err)
	}

	return entry, nil
}

// ListForCase returns a case's time entries, newest first.
func (s *TimesheetService) ListForCase(ctx context.Context, caseID string) ([]domain.TimesheetEntry, error) {
	return s.entries.ListForCase(ctx, caseID)
}

// Delete removes a time entry. The summary log entry it produced stays.
func (s *TimesheetService) Delete(ctx context.Context, id string) error {
	if _, err := s.entries.GetByID(ctx, id); err != nil {
		return err
	}
	return s.entries.Delete(ctx, id)
}

// TotalForCase sums worked time across a case's entries.
func (s *TimesheetService) TotalForCase(ctx context.Context, caseID string) (time.Duration, error) {
	return s.entries.TotalForCase(ctx, caseID)
}
