package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// AgreementService manages payment agreements, their installment schedules
// and case expenses.
type AgreementService struct {
	finance domain.FinanceRepository
	cases   domain.CaseRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewAgreementService creates a service with the given adapters.
func NewAgreementService(finance domain.FinanceRepository, cases domain.CaseRepository, logger *slog.Logger) *AgreementService {
	return &AgreementService{
		finance: finance,
		cases:   cases,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AgreementInput carries the negotiated terms of a new agreement.
type AgreementInput struct {
	CaseID           string
	AgreedOn         time.Time
	Installments     int
	InstallmentCents int64
	FirstDueDate     time.Time
	Notes            string
}

// Create persists an agreement and generates its installment schedule:
// numbered from 1, due monthly from the first due date. The schedule is
// generated exactly once; later edits to the agreement never touch it.
func (s *AgreementService) Create(ctx context.Context, input AgreementInput) (domain.Agreement, error) {
	if input.Installments <= 0 {
		return domain.Agreement{}, fmt.Errorf("installment count must be positive, got %d", input.Installments)
	}
	if input.InstallmentCents <= 0 {
		return domain.Agreement{}, fmt.Errorf("installment value must be positive, got %d", input.InstallmentCents)
	}
	if _, err := s.cases.GetByID(ctx, input.CaseID); err != nil {
		return domain.Agreement{}, err
	}

	id, err := newID()
	if err != nil {
		return domain.Agreement{}, fmt.Errorf("generating agreement id: %w", err)
	}

	agreement := domain.Agreement{
		ID:               id,
		CaseID:           input.CaseID,
		AgreedOn:         input.AgreedOn,
		Installments:     input.Installments,
		InstallmentCents: input.InstallmentCents,
		FirstDueDate:     input.FirstDueDate,
		Notes:            input.Notes,
		CreatedAt:        s.now(),
	}

	installments := make([]domain.Installment, 0, input.Installments)
	for i := range input.Installments {
		instID, err := newID()
		if err != nil {
			return domain.Agreement{}, fmt.Errorf("generating installment id: %w", err)
		}
		installments = append(installments, domain.Installment{
			ID:          instID,
			AgreementID: id,
			Number:      i + 1,
			DueDate:     input.FirstDueDate.AddDate(0, i, 0),
			Cents:       input.InstallmentCents,
			Status:      domain.InstallmentOpen,
		})
	}

	if err := s.finance.CreateAgreement(ctx, agreement, installments); err != nil {
		return domain.Agreement{}, fmt.Errorf("creating agreement: %w", err)
	}
	return agreement, nil
}

// GetByID returns an agreement by its unique identifier.
func (s *AgreementService) GetByID(ctx context.Context, id string) (domain.Agreement, error) {
	return s.finance.GetAgreement(ctx, id)
}

// ListForCase returns a case's agreements, newest first.
func (s *AgreementService) ListForCase(ctx context.Context, caseID string) ([]domain.Agreement, error) {
	return s.finance.AgreementsForCase(ctx, caseID)
}

// Installments returns an agreement's schedule ordered by number.
func (s *AgreementService) Installments(ctx context.Context, agreementID string) ([]domain.Installment, error) {
	return s.finance.InstallmentsForAgreement(ctx, agreementID)
}

// Delete removes an agreement and its installments.
func (s *AgreementService) Delete(ctx context.Context, id string) error {
	if _, err := s.finance.GetAgreement(ctx, id); err != nil {
		return err
	}
	return s.finance.DeleteAgreement(ctx, id)
}

// Settle marks an installment as paid and notes it in the case log.
func (s *AgreementService) Settle(ctx context.Context, installmentID, actorID string) (domain.Installment, error) {
	installment, err := s.finance.GetInstallment(ctx, installmentID)
	if err != nil {
		return domain.Installment{}, err
	}
	agreement, err := s.finance.GetAgreement(ctx, installment.AgreementID)
	if err != nil {
		return domain.Installment{}, fmt.Errorf("loading agreement: %w", err)
	}

	now := s.now()
	installment.Status = domain.InstallmentSettled
	installment.SettledOn = &now
	if err := s.finance.UpdateInstallment(ctx, installment); err != nil {
		return domain.Installment{}, fmt.Errorf("settling installment: %w", err)
	}

	logID, err := newID()
	if err == nil {
		author := actorID
		err = s.cases.AppendLog(ctx, domain.CaseLogEntry{
			ID:     logID,
			CaseID: agreement.CaseID,
			Date:   now,
			Description: fmt.Sprintf("[ACORDO] Installment #%d (due %s) of the %s agreement settled.",
				installment.Number,
				installment.DueDate.Format("02/01/2006"),
				agreement.AgreedOn.Format("02/01/2006")),
			AuthorUserID: &author,
			CreatedAt:    now,
		})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "appending settlement log entry",
			"case_id", agreement.CaseID, "error", err)
	}

	return installment, nil
}

// AddExpense records a cost incurred on behalf of a case.
func (s *AgreementService) AddExpense(ctx context.Context, caseID string, spentOn time.Time, description string, cents int64) (domain.Expense, error) {
	if cents <= 0 {
		return domain.Expense{}, fmt.Errorf("expense value must be positive, got %d", cents)
	}
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return domain.Expense{}, err
	}

	id, err := newID()
	if err != nil {
		return domain.Expense{}, fmt.Errorf("generating expense id: %w", err)
	}
	expense := domain.Expense{
		ID:          id,
		CaseID:      caseID,
		SpentOn:     spentOn,
		Description: description,
		Cents:       cents,
		CreatedAt:   s.now(),
	}
	if err := s.finance.CreateExpense(ctx, expense); err != nil {
		return domain.Expense{}, fmt.Errorf("creating expense: %w", err)
	}
	return expense, nil
}

// ExpensesForCase returns a case's expenses, oldest first.
func (s *AgreementService) ExpensesForCase(ctx context.Context, caseID string) ([]domain.Expense, error) {
	return s.finance.ExpensesForCase(ctx, caseID)
}
