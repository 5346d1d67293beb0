package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// FinanceRepository implements domain.FinanceRepository using SQLite.
type FinanceRepository struct {
	db *sql.DB
}

var _ domain.FinanceRepository = (*FinanceRepository)(nil)

func (r *FinanceRepository) CreateAgreement(ctx context.Context, a domain.Agreement, installments []domain.Installment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO agreements
		 (id, case_id, agreed_on, installments, installment_cents, first_due_date, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.CaseID, a.AgreedOn.Format(dateFormat),
		a.Installments, a.InstallmentCents, a.FirstDueDate.Format(dateFormat),
		a.Notes, a.CreatedAt.Format(timeFormat),
	); err != nil {
		return fmt.Errorf("inserting agreement: %w", err)
	}

	for _, inst := range installments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO installments (id, agreement_id, number, due_date, cents, status, settled_on)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			inst.ID, inst.AgreementID, inst.Number,
			inst.DueDate.Format(dateFormat), inst.Cents,
			string(inst.Status), formatDatePtr(inst.SettledOn),
		); err != nil {
			return fmt.Errorf("inserting installment: %w", err)
		}
	}

	return tx.Commit()
}

func (r *FinanceRepository) GetAgreement(ctx context.Context, id string) (domain.Agreement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, case_id, agreed_on, installments, installment_cents, first_due_date, notes, created_at
		 FROM agreements WHERE id = ?`, id)

	a, err := scanAgreement(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Agreement{}, domain.ErrAgreementNotFound
		}
		return domain.Agreement{}, fmt.Errorf("scanning agreement: %w", err)
	}
	return a, nil
}

func (r *FinanceRepository) AgreementsForCase(ctx context.Context, caseID string) ([]domain.Agreement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, agreed_on, installments, installment_cents, first_due_date, notes, created_at
		 FROM agreements WHERE case_id = ? ORDER BY agreed_on DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing agreements: %w", err)
	}
	defer rows.Close()

	var agreements []domain.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning agreement row: %w", err)
		}
		agreements = append(agreements, a)
	}
	return agreements, rows.Err()
}

func (r *FinanceRepository) DeleteAgreement(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM agreements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting agreement: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrAgreementNotFound)
}

func scanAgreement(scan func(...any) error) (domain.Agreement, error) {
	var a domain.Agreement
	var agreedOn, firstDue, createdAt string

	err := scan(&a.ID, &a.CaseID, &agreedOn, &a.Installments, &a.InstallmentCents,
		&firstDue, &a.Notes, &createdAt)
	if err != nil {
		return domain.Agreement{}, err
	}

	a.AgreedOn, _ = time.Parse(dateFormat, agreedOn)
	a.FirstDueDate, _ = time.Parse(dateFormat, firstDue)
	a.CreatedAt, _ = time.Parse(timeFormat, createdAt)

	return a, nil
}

func (r *FinanceRepository) GetInstallment(ctx context.Context, id string) (domain.Installment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, agreement_id, number, due_date, cents, status, settled_on
		 FROM installments WHERE id = ?`, id)

	i, err := scanInstallment(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Installment{}, domain.ErrInstallmentNotFound
		}
		return domain.Installment{}, fmt.Errorf("scanning installment: %w", err)
	}
	return i, nil
}

func (r *FinanceRepository) InstallmentsForAgreement(ctx context.Context, agreementID string) ([]domain.Installment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, agreement_id, number, due_date, cents, status, settled_on
		 FROM installments WHERE agreement_id = ? ORDER BY number`, agreementID)
	if err != nil {
		return nil, fmt.Errorf("listing installments: %w", err)
	}
	defer rows.Close()

	var installments []domain.Installment
	for rows.Next() {
		i, err := scanInstallment(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning installment row: %w", err)
		}
		installments = append(installments, i)
	}
	return installments, rows.Err()
}

func (r *FinanceRepository) UpdateInstallment(ctx context.Context, i domain.Installment) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE installments SET status = ?, settled_on = ? WHERE id = ?`,
		string(i.Status), formatDatePtr(i.SettledOn), i.ID,
	)
	if err != nil {
		return fmt.Errorf("updating installment: %w", err)
	}
	return rowsAffectedOrNotFound(result, domain.ErrInstallmentNotFound)
}

func scanInstallment(scan func(...any) error) (domain.Installment, error) {
	var i domain.Installment
	var dueDate, status string
	var settledOn sql.NullString

	err := scan(&i.ID, &i.AgreementID, &i.Number, &dueDate, &i.Cents, &status, &settledOn)
	if err != nil {
		return domain.Installment{}, err
	}

	i.DueDate, _ = time.Parse(dateFormat, dueDate)
	i.Status = domain.InstallmentStatus(status)
	i.SettledOn = parseDatePtr(settledOn)

	return i, nil
}

func (r *FinanceRepository) CreateExpense(ctx context.Context, e domain.Expense) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, case_id, spent_on, description, cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.CaseID, e.SpentOn.Format(dateFormat), e.Description, e.Cents,
		e.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}
	return nil
}

func (r *FinanceRepository) ExpensesForCase(ctx context.Context, caseID string) ([]domain.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, spent_on, description, cents, created_at
		 FROM expenses WHERE case_id = ? ORDER BY spent_on DESC`, caseID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var e domain.Expense
		var spentOn, createdAt string
		if err := rows.Scan(&e.ID, &e.CaseID, &spentOn, &e.Description, &e.Cents, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning expense row: %w", err)
		}
		e.SpentOn, _ = time.Parse(dateFormat, spentOn)
		e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
