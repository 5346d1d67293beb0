package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// TimesheetRepository implements domain.TimesheetRepository using SQLite.
// Durations are stored as whole seconds.
type TimesheetRepository struct {
	db *sql.DB
}

var _ domain.TimesheetRepository = (*TimesheetRepository)(nil)

func (r *TimesheetRepository) Create(ctx context.Context, e domain.TimesheetEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO timesheet_entries
		 (id, case_id, worked_on, professional_id, duration_seconds, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, e.WorkedOn.Format(dateFormat), e.Professional,
		int64(e.Duration.Seconds()), e.Description,
		e.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting timesheet entry: %w", err)
	}
	return nil
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id string) (domain.TimesheetEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, case_id, worked_on, professional_id, duration_seconds, description, created_at
		 FROM timesheet_entries WHERE id = ?`, id)

	e, err := scanEntry(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.TimesheetEntry{}, domain.ErrEntryNotFound
		}
		return domain.TimesheetEntry{}, fmt.Errorf("scanning timesheet entry: %w", err)
	}
	return e, nil
}

func (r *TimesheetRepository) ListForCase(ctx context.Context, caseID string) ([]domain.TimesheetEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, worked_on, professional_id, duration_seconds, description, created_at
		 FROM timesheet_entries WHERE case_id = ? ORDER BY worked_on DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimesheetEntry
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning timesheet entry row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timesheet entry: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrEntryNotFound)
}

func (r *TimesheetRepository) TotalForCase(ctx context.Context, caseID string) (time.Duration, error) {
	var seconds sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(duration_seconds) FROM timesheet_entries WHERE case_id = ?`,
		caseID,
	).Scan(&seconds)
	if err != nil {
		return 0, fmt.Errorf("summing timesheet entries: %w", err)
	}
	return time.Duration(seconds.Int64) * time.Second, nil
}

func scanEntry(scan func(...any) error) (domain.TimesheetEntry, error) {
	var e domain.TimesheetEntry
	var workedOn, createdAt string
	var seconds int64

	err := scan(&e.ID, &e.CaseID, &workedOn, &e.Professional, &seconds, &e.Description, &createdAt)
	if err != nil {
		return domain.TimesheetEntry{}, err
	}

	e.WorkedOn, _ = time.Parse(dateFormat, workedOn)
	e.Duration = time.Duration(seconds) * time.Second
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return e, nil
}
