package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// AgreementResponse is the API representation of an agreement.
type AgreementResponse struct {
	ID               string `json:"id" doc:"Unique identifier"`
	CaseID           string `json:"case_id" doc:"Owning case"`
	AgreedOn         string `json:"agreed_on" doc:"Agreement date"`
	Installments     int    `json:"installments" doc:"Number of installments"`
	InstallmentCents int64  `json:"installment_cents" doc:"Value of each installment in cents"`
	TotalCents       int64  `json:"total_cents" doc:"Full agreed value in cents"`
	FirstDueDate     string `json:"first_due_date" doc:"Due date of the first installment"`
	Notes            string `json:"notes,omitempty" doc:"Free-text notes"`
	CreatedAt        string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toAgreementResponse(a domain.Agreement) AgreementResponse {
	return AgreementResponse{
		ID:               a.ID,
		CaseID:           a.CaseID,
		AgreedOn:         a.AgreedOn.Format(dateFormat),
		Installments:     a.Installments,
		InstallmentCents: a.InstallmentCents,
		TotalCents:       a.TotalCents(),
		FirstDueDate:     a.FirstDueDate.Format(dateFormat),
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt.Format(timeFormat),
	}
}

// InstallmentResponse is the API representation of an installment.
type InstallmentResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Number    int    `json:"number" doc:"Position in the schedule, from 1"`
	DueDate   string `json:"due_date" doc:"Due date"`
	Cents     int64  `json:"cents" doc:"Value in cents"`
	Status    string `json:"status" doc:"Payment state"`
	SettledOn string `json:"settled_on,omitempty" doc:"Settlement date"`
}

func toInstallmentResponse(i domain.Installment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:      i.ID,
		Number:  i.Number,
		DueDate: i.DueDate.Format(dateFormat),
		Cents:   i.Cents,
		Status:  string(i.Status),
	}
	if i.SettledOn != nil {
		resp.SettledOn = i.SettledOn.Format(dateFormat)
	}
	return resp
}

// ExpenseResponse is the API representation of an expense.
type ExpenseResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	CaseID      string `json:"case_id" doc:"Owning case"`
	SpentOn     string `json:"spent_on" doc:"Expense date"`
	Description string `json:"description" doc:"What was paid for"`
	Cents       int64  `json:"cents" doc:"Value in cents"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toExpenseResponse(e domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		CaseID:      e.CaseID,
		SpentOn:     e.SpentOn.Format(dateFormat),
		Description: e.Description,
		Cents:       e.Cents,
		CreatedAt:   e.CreatedAt.Format(timeFormat),
	}
}

type CreateAgreementInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		AgreedOn         string `json:"agreed_on" doc:"Agreement date (YYYY-MM-DD)"`
		Installments     int    `json:"installments" minimum:"1" doc:"Number of installments"`
		InstallmentCents int64  `json:"installment_cents" minimum:"1" doc:"Value of each installment in cents"`
		FirstDueDate     string `json:"first_due_date" doc:"Due date of the first installment (YYYY-MM-DD)"`
		Notes            string `json:"notes,omitempty" doc:"Free-text notes"`
	}
}

type CreateAgreementOutput struct {
	Body AgreementResponse
}

type ListAgreementsInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type ListAgreementsOutput struct {
	Body []AgreementResponse
}

type DeleteAgreementInput struct {
	ID string `path:"id" doc:"Agreement ID"`
}

type DeleteAgreementOutput struct {
	Status int
}

type ListInstallmentsInput struct {
	ID string `path:"id" doc:"Agreement ID"`
}

type ListInstallmentsOutput struct {
	Body []InstallmentResponse
}

type SettleInstallmentInput struct {
	ID   string `path:"id" doc:"Installment ID"`
	Body struct {
		ActorID string `json:"actor_id" minLength:"1" doc:"Acting user"`
	}
}

type SettleInstallmentOutput struct {
	Body InstallmentResponse
}

type AddExpenseInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		SpentOn     string `json:"spent_on" doc:"Expense date (YYYY-MM-DD)"`
		Description string `json:"description" minLength:"1" doc:"What was paid for"`
		Cents       int64  `json:"cents" minimum:"1" doc:"Value in cents"`
	}
}

type AddExpenseOutput struct {
	Body ExpenseResponse
}

type ListExpensesInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type ListExpensesOutput struct {
	Body []ExpenseResponse
}

func registerFinanceRoutes(api huma.API, svc *app.AgreementService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-agreement",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases/{id}/agreements",
		Summary:     "Create a payment agreement for a case",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *CreateAgreementInput) (*CreateAgreementOutput, error) {
		agreedOn, err := parseDate(input.Body.AgreedOn)
		if err != nil {
			return nil, err
		}
		firstDue, err := parseDate(input.Body.FirstDueDate)
		if err != nil {
			return nil, err
		}
		agreement, err := svc.Create(ctx, app.AgreementInput{
			CaseID:           input.ID,
			AgreedOn:         agreedOn,
			Installments:     input.Body.Installments,
			InstallmentCents: input.Body.InstallmentCents,
			FirstDueDate:     firstDue,
			Notes:            input.Body.Notes,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateAgreementOutput{Body: toAgreementResponse(agreement)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-agreements",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/agreements",
		Summary:     "List a case's agreements",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *ListAgreementsInput) (*ListAgreementsOutput, error) {
		agreements, err := svc.ListForCase(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AgreementResponse, len(agreements))
		for i, a := range agreements {
			resp[i] = toAgreementResponse(a)
		}
		return &ListAgreementsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-agreement",
		Method:      http.MethodDelete,
		Path:        "/api/v1/agreements/{id}",
		Summary:     "Delete an agreement and its installments",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *DeleteAgreementInput) (*DeleteAgreementOutput, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteAgreementOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-installments",
		Method:      http.MethodGet,
		Path:        "/api/v1/agreements/{id}/installments",
		Summary:     "List an agreement's installments",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *ListInstallmentsInput) (*ListInstallmentsOutput, error) {
		installments, err := svc.Installments(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]InstallmentResponse, len(installments))
		for i, inst := range installments {
			resp[i] = toInstallmentResponse(inst)
		}
		return &ListInstallmentsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "settle-installment",
		Method:      http.MethodPost,
		Path:        "/api/v1/installments/{id}/settle",
		Summary:     "Mark an installment as paid",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *SettleInstallmentInput) (*SettleInstallmentOutput, error) {
		installment, err := svc.Settle(ctx, input.ID, input.Body.ActorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SettleInstallmentOutput{Body: toInstallmentResponse(installment)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-expense",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases/{id}/expenses",
		Summary:     "Record an expense on a case",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *AddExpenseInput) (*AddExpenseOutput, error) {
		spentOn, err := parseDate(input.Body.SpentOn)
		if err != nil {
			return nil, err
		}
		expense, err := svc.AddExpense(ctx, input.ID, spentOn, input.Body.Description, input.Body.Cents)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AddExpenseOutput{Body: toExpenseResponse(expense)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-expenses",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/expenses",
		Summary:     "List a case's expenses",
		Tags:        []string{"Finance"},
	}, func(ctx context.Context, input *ListExpensesInput) (*ListExpensesOutput, error) {
		expenses, err := svc.ExpensesForCase(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ExpenseResponse, len(expenses))
		for i, e := range expenses {
			resp[i] = toExpenseResponse(e)
		}
		return &ListExpensesOutput{Body: resp}, nil
	})
}
