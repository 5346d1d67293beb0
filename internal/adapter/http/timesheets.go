package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// TimesheetEntryResponse is the API representation of a timesheet entry.
type TimesheetEntryResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	CaseID       string `json:"case_id" doc:"Owning case"`
	WorkedOn     string `json:"worked_on" doc:"Work date"`
	Professional string `json:"professional" doc:"User who worked the time"`
	Duration     string `json:"duration" doc:"Time worked (HH:MM)"`
	Description  string `json:"description,omitempty" doc:"What was done"`
	CreatedAt    string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toTimesheetResponse(e domain.TimesheetEntry) TimesheetEntryResponse {
	return TimesheetEntryResponse{
		ID:           e.ID,
		CaseID:       e.CaseID,
		WorkedOn:     e.WorkedOn.Format(dateFormat),
		Professional: e.Professional,
		Duration:     domain.FormatDuration(e.Duration),
		Description:  e.Description,
		CreatedAt:    e.CreatedAt.Format(timeFormat),
	}
}

type AddTimesheetEntryInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		WorkedOn       string `json:"worked_on" doc:"Work date (YYYY-MM-DD)"`
		ProfessionalID string `json:"professional_id" minLength:"1" doc:"User who worked the time"`
		Minutes        int    `json:"minutes" minimum:"1" doc:"Time worked in minutes"`
		Description    string `json:"description,omitempty" doc:"What was done"`
	}
}

type AddTimesheetEntryOutput struct {
	Body TimesheetEntryResponse
}

type ListTimesheetInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type ListTimesheetOutput struct {
	Body struct {
		Entries []TimesheetEntryResponse `json:"entries" doc:"Entries for the case"`
		Total   string                   `json:"total" doc:"Total time worked (HH:MM)"`
	}
}

type DeleteTimesheetEntryInput struct {
	ID string `path:"id" doc:"Timesheet entry ID"`
}

type DeleteTimesheetEntryOutput struct {
	Status int
}

func registerTimesheetRoutes(api huma.API, svc *app.TimesheetService) {
	huma.Register(api, huma.Operation{
		OperationID: "add-timesheet-entry",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases/{id}/timesheet",
		Summary:     "Record time worked on a case",
		Tags:        []string{"Timesheet"},
	}, func(ctx context.Context, input *AddTimesheetEntryInput) (*AddTimesheetEntryOutput, error) {
		workedOn, err := parseDate(input.Body.WorkedOn)
		if err != nil {
			return nil, err
		}
		entry, err := svc.Add(ctx, input.ID, workedOn, input.Body.ProfessionalID,
			time.Duration(input.Body.Minutes)*time.Minute, input.Body.Description)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AddTimesheetEntryOutput{Body: toTimesheetResponse(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "case-timesheet",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/timesheet",
		Summary:     "List a case's timesheet entries",
		Tags:        []string{"Timesheet"},
	}, func(ctx context.Context, input *ListTimesheetInput) (*ListTimesheetOutput, error) {
		entries, err := svc.ListForCase(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		total, err := svc.TotalForCase(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		out := &ListTimesheetOutput{}
		out.Body.Entries = make([]TimesheetEntryResponse, len(entries))
		for i, e := range entries {
			out.Body.Entries[i] = toTimesheetResponse(e)
		}
		out.Body.Total = domain.FormatDuration(total)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-timesheet-entry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/timesheet/{id}",
		Summary:     "Delete a timesheet entry",
		Tags:        []string{"Timesheet"},
	}, func(ctx context.Context, input *DeleteTimesheetEntryInput) (*DeleteTimesheetEntryOutput, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteTimesheetEntryOutput{Status: http.StatusNoContent}, nil
	})
}
