package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// CaseRepository implements domain.CaseRepository using SQLite.
type CaseRepository struct {
	db *sql.DB
}

var _ domain.CaseRepository = (*CaseRepository)(nil)

const caseColumns = `id, title, client_id, product_id, status_id, responsible_lawyer_id,
	 entry_date, current_stage_id, stage_entered_at, closed_at,
	 drive_folder_id, drive_folder_url, created_at, updated_at`

func (r *CaseRepository) Create(ctx context.Context, c domain.Case) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cases (`+caseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.ClientID, c.ProductID, c.StatusID,
		nullString(c.ResponsibleLawyerID),
		c.EntryDate.Format(dateFormat),
		nullString(c.CurrentStageID), formatTimePtr(c.StageEnteredAt), formatTimePtr(c.ClosedAt),
		c.DriveFolderID, c.DriveFolderURL,
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting case: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (domain.Case, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)

	c, err := scanCase(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Case{}, domain.ErrCaseNotFound
		}
		return domain.Case{}, fmt.Errorf("scanning case: %w", err)
	}
	return c, nil
}

func (r *CaseRepository) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases`
	var where []string
	var args []any

	if filter.ClientID != "" {
		where = append(where, `client_id = ?`)
		args = append(args, filter.ClientID)
	}
	if filter.ProductID != "" {
		where = append(where, `product_id = ?`)
		args = append(args, filter.ProductID)
	}
	if filter.StatusID != "" {
		where = append(where, `status_id = ?`)
		args = append(args, filter.StatusID)
	}
	if filter.StageID != "" {
		where = append(where, `current_stage_id = ?`)
		args = append(args, filter.StageID)
	}
	if filter.FlowID != "" {
		where = append(where, `current_stage_id IN (SELECT id FROM stages WHERE flow_id = ?)`)
		args = append(args, filter.FlowID)
	}
	for i, w := range where {
		if i == 0 {
			query += ` WHERE ` + w
		} else {
			query += ` AND ` + w
		}
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning case row: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (r *CaseRepository) Update(ctx context.Context, c domain.Case) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET title = ?, client_id = ?, product_id = ?, status_id = ?,
		 responsible_lawyer_id = ?, entry_date = ?, closed_at = ?, updated_at = ?
		 WHERE id = ?`,
		c.Title, c.ClientID, c.ProductID, c.StatusID,
		nullString(c.ResponsibleLawyerID),
		c.EntryDate.Format(dateFormat), formatTimePtr(c.ClosedAt),
		time.Now().UTC().Format(timeFormat), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating case: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrCaseNotFound)
}

func (r *CaseRepository) SetCurrentStage(ctx context.Context, caseID string, stageID *string, enteredAt *time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET current_stage_id = ?, stage_entered_at = ?, updated_at = ?
		 WHERE id = ?`,
		nullString(stageID), formatTimePtr(enteredAt),
		time.Now().UTC().Format(timeFormat), caseID,
	)
	if err != nil {
		return fmt.Errorf("setting case stage: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrCaseNotFound)
}

func (r *CaseRepository) SetStatus(ctx context.Context, caseID, statusID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET status_id = ?, updated_at = ? WHERE id = ?`,
		statusID, time.Now().UTC().Format(timeFormat), caseID,
	)
	if err != nil {
		return fmt.Errorf("setting case status: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrCaseNotFound)
}

func (r *CaseRepository) SetDriveFolder(ctx context.Context, caseID, folderID, folderURL string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cases SET drive_folder_id = ?, drive_folder_url = ?, updated_at = ?
		 WHERE id = ?`,
		folderID, folderURL, time.Now().UTC().Format(timeFormat), caseID,
	)
	if err != nil {
		return fmt.Errorf("setting case drive folder: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrCaseNotFound)
}

func scanCase(scan func(...any) error) (domain.Case, error) {
	var c domain.Case
	var lawyerID, currentStage, stageEnteredAt, closedAt sql.NullString
	var entryDate, createdAt, updatedAt string

	err := scan(&c.ID, &c.Title, &c.ClientID, &c.ProductID, &c.StatusID,
		&lawyerID, &entryDate, &currentStage, &stageEnteredAt, &closedAt,
		&c.DriveFolderID, &c.DriveFolderURL, &createdAt, &updatedAt)
	if err != nil {
		return domain.Case{}, err
	}

	c.ResponsibleLawyerID = stringPtr(lawyerID)
	c.CurrentStageID = stringPtr(currentStage)
	c.StageEnteredAt = parseTimePtr(stageEnteredAt)
	c.ClosedAt = parseTimePtr(closedAt)
	c.EntryDate, _ = time.Parse(dateFormat, entryDate)
	c.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	c.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return c, nil
}

func (r *CaseRepository) AppendHistory(ctx context.Context, h domain.StageHistory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_history (id, case_id, stage_id, entered_at, left_at)
		 VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.CaseID, h.StageID,
		h.EnteredAt.Format(timeFormat), formatTimePtr(h.LeftAt),
	)
	if err != nil {
		return fmt.Errorf("inserting stage history: %w", err)
	}
	return nil
}

func (r *CaseRepository) OpenHistory(ctx context.Context, caseID, stageID string) (domain.StageHistory, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, case_id, stage_id, entered_at, left_at FROM stage_history
		 WHERE case_id = ? AND stage_id = ? AND left_at IS NULL
		 ORDER BY entered_at DESC LIMIT 1`, caseID, stageID)

	h, err := scanHistory(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.StageHistory{}, false, nil
		}
		return domain.StageHistory{}, false, fmt.Errorf("scanning stage history: %w", err)
	}
	return h, true, nil
}

func (r *CaseRepository) CloseHistory(ctx context.Context, historyID string, leftAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stage_history SET left_at = ? WHERE id = ?`,
		leftAt.Format(timeFormat), historyID,
	)
	if err != nil {
		return fmt.Errorf("closing stage history: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrStageNotFound)
}

func (r *CaseRepository) HistoryForCase(ctx context.Context, caseID string) ([]domain.StageHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, stage_id, entered_at, left_at FROM stage_history
		 WHERE case_id = ? ORDER BY entered_at`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing stage history: %w", err)
	}
	defer rows.Close()

	var history []domain.StageHistory
	for rows.Next() {
		h, err := scanHistory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning stage history row: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func scanHistory(scan func(...any) error) (domain.StageHistory, error) {
	var h domain.StageHistory
	var enteredAt string
	var leftAt sql.NullString

	err := scan(&h.ID, &h.CaseID, &h.StageID, &enteredAt, &leftAt)
	if err != nil {
		return domain.StageHistory{}, err
	}

	h.EnteredAt, _ = time.Parse(timeFormat, enteredAt)
	h.LeftAt = parseTimePtr(leftAt)

	return h, nil
}

const instanceColumns = `id, case_id, template_id, status, responsible_user_id,
	 created_at, due_at, completed_at, completion_note`

func (r *CaseRepository) CreateInstance(ctx context.Context, a domain.ActionInstance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO action_instances (`+instanceColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CaseID, a.TemplateID, string(a.Status), a.ResponsibleUserID,
		a.CreatedAt.Format(timeFormat), formatTimePtr(a.DueAt), formatTimePtr(a.CompletedAt),
		a.CompletionNote,
	)
	if err != nil {
		return fmt.Errorf("inserting action instance: %w", err)
	}
	return nil
}

func (r *CaseRepository) GetInstance(ctx context.Context, id string) (domain.ActionInstance, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM action_instances WHERE id = ?`, id)

	a, err := scanInstance(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ActionInstance{}, domain.ErrInstanceNotFound
		}
		return domain.ActionInstance{}, fmt.Errorf("scanning action instance: %w", err)
	}
	return a, nil
}

func (r *CaseRepository) UpdateInstance(ctx context.Context, a domain.ActionInstance) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE action_instances SET status = ?, responsible_user_id = ?,
		 due_at = ?, completed_at = ?, completion_note = ?
		 WHERE id = ?`,
		string(a.Status), a.ResponsibleUserID,
		formatTimePtr(a.DueAt), formatTimePtr(a.CompletedAt), a.CompletionNote,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating action instance: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrInstanceNotFound)
}

func (r *CaseRepository) DeleteInstance(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM action_instances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting action instance: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrInstanceNotFound)
}

func (r *CaseRepository) InstancesForCase(ctx context.Context, caseID string) ([]domain.ActionInstance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+instanceColumns+` FROM action_instances
		 WHERE case_id = ? ORDER BY created_at`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing action instances: %w", err)
	}
	defer rows.Close()

	return collectInstances(rows)
}

func (r *CaseRepository) OverdueInstances(ctx context.Context, asOf time.Time) ([]domain.ActionInstance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+instanceColumns+` FROM action_instances
		 WHERE status = ? AND due_at IS NOT NULL AND due_at < ?
		 ORDER BY due_at`,
		string(domain.InstancePending), asOf.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("listing overdue instances: %w", err)
	}
	defer rows.Close()

	return collectInstances(rows)
}

func collectInstances(rows *sql.Rows) ([]domain.ActionInstance, error) {
	var instances []domain.ActionInstance
	for rows.Next() {
		a, err := scanInstance(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning action instance row: %w", err)
		}
		instances = append(instances, a)
	}
	return instances, rows.Err()
}

func scanInstance(scan func(...any) error) (domain.ActionInstance, error) {
	var a domain.ActionInstance
	var status, createdAt string
	var dueAt, completedAt sql.NullString

	err := scan(&a.ID, &a.CaseID, &a.TemplateID, &status, &a.ResponsibleUserID,
		&createdAt, &dueAt, &completedAt, &a.CompletionNote)
	if err != nil {
		return domain.ActionInstance{}, err
	}

	a.Status = domain.InstanceStatus(status)
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	a.DueAt = parseTimePtr(dueAt)
	a.CompletedAt = parseTimePtr(completedAt)

	return a, nil
}

func (r *CaseRepository) AppendLog(ctx context.Context, e domain.CaseLogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO case_log (id, case_id, entry_date, description, author_user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, e.Date.Format(timeFormat), e.Description,
		nullString(e.AuthorUserID), e.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting case log entry: %w", err)
	}
	return nil
}

func (r *CaseRepository) LogForCase(ctx context.Context, caseID string) ([]domain.CaseLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, entry_date, description, author_user_id, created_at
		 FROM case_log WHERE case_id = ? ORDER BY created_at DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing case log: %w", err)
	}
	defer rows.Close()

	var entries []domain.CaseLogEntry
	for rows.Next() {
		var e domain.CaseLogEntry
		var date, createdAt string
		var author sql.NullString
		if err := rows.Scan(&e.ID, &e.CaseID, &date, &e.Description, &author, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning case log row: %w", err)
		}
		e.Date, _ = time.Parse(timeFormat, date)
		e.AuthorUserID = stringPtr(author)
		e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func rowsAffectedOrNotFound(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
