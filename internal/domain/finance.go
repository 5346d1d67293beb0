package domain

import "time"

// Agreement is a negotiated payment plan attached to a case. Installments
// are generated once at creation; editing an agreement never regenerates
// them.
type Agreement struct {
	ID               string
	CaseID           string
	AgreedOn         time.Time
	Installments     int
	InstallmentCents int64
	FirstDueDate     time.Time
	Notes            string
	CreatedAt        time.Time
}

// TotalCents is the full agreed value across all installments.
func (a Agreement) TotalCents() int64 {
	return int64(a.Installments) * a.InstallmentCents
}

// InstallmentStatus is the payment state of one installment.
type InstallmentStatus string

const (
	InstallmentOpen    InstallmentStatus = "open"
	InstallmentSettled InstallmentStatus = "settled"
)

// Installment is one numbered slice of an agreement, due monthly from the
// agreement's first due date.
type Installment struct {
	ID          string
	AgreementID string
	Number      int
	DueDate     time.Time
	Cents       int64
	Status      InstallmentStatus
	SettledOn   *time.Time
}

// Expense is a cost incurred on behalf of a case.
type Expense struct {
	ID          string
	CaseID      string
	SpentOn     time.Time
	Description string
	Cents       int64
	CreatedAt   time.Time
}
