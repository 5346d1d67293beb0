package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// CaseResponse is the API representation of a case.
type CaseResponse struct {
	ID                  string  `json:"id" doc:"Unique identifier"`
	Title               string  `json:"title" doc:"Composed case title"`
	ClientID            string  `json:"client_id" doc:"Owning client"`
	ProductID           string  `json:"product_id" doc:"Service product"`
	StatusID            string  `json:"status_id" doc:"Current status"`
	ResponsibleLawyerID *string `json:"responsible_lawyer_id,omitempty" doc:"Responsible lawyer"`
	EntryDate           string  `json:"entry_date" doc:"Case entry date"`
	CurrentStageID      *string `json:"current_stage_id,omitempty" doc:"Current workflow stage, absent outside a workflow"`
	StageEnteredAt      string  `json:"stage_entered_at,omitempty" doc:"When the current stage was entered (ISO 8601)"`
	ClosedAt            string  `json:"closed_at,omitempty" doc:"When the workflow finished (ISO 8601)"`
	DriveFolderID       string  `json:"drive_folder_id,omitempty" doc:"External drive folder"`
	DriveFolderURL      string  `json:"drive_folder_url,omitempty" doc:"External drive folder link"`
	CreatedAt           string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt           string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toCaseResponse(c domain.Case) CaseResponse {
	return CaseResponse{
		ID:                  c.ID,
		Title:               c.Title,
		ClientID:            c.ClientID,
		ProductID:           c.ProductID,
		StatusID:            c.StatusID,
		ResponsibleLawyerID: c.ResponsibleLawyerID,
		EntryDate:           c.EntryDate.Format(dateFormat),
		CurrentStageID:      c.CurrentStageID,
		StageEnteredAt:      formatTimePtr(c.StageEnteredAt),
		ClosedAt:            formatTimePtr(c.ClosedAt),
		DriveFolderID:       c.DriveFolderID,
		DriveFolderURL:      c.DriveFolderURL,
		CreatedAt:           c.CreatedAt.Format(timeFormat),
		UpdatedAt:           c.UpdatedAt.Format(timeFormat),
	}
}

func toCaseResponses(cases []domain.Case) []CaseResponse {
	resp := make([]CaseResponse, len(cases))
	for i, c := range cases {
		resp[i] = toCaseResponse(c)
	}
	return resp
}

// ActionInstanceResponse is the API representation of an action instance.
type ActionInstanceResponse struct {
	ID                string `json:"id" doc:"Unique identifier"`
	CaseID            string `json:"case_id" doc:"Owning case"`
	TemplateID        string `json:"template_id" doc:"Originating action template"`
	Status            string `json:"status" doc:"Lifecycle state"`
	ResponsibleUserID string `json:"responsible_user_id" doc:"Assigned user"`
	CreatedAt         string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	DueAt             string `json:"due_at,omitempty" doc:"Deadline (ISO 8601)"`
	CompletedAt       string `json:"completed_at,omitempty" doc:"Completion timestamp (ISO 8601)"`
	CompletionNote    string `json:"completion_note,omitempty" doc:"Operator note left at completion"`
}

func toInstanceResponse(a domain.ActionInstance) ActionInstanceResponse {
	return ActionInstanceResponse{
		ID:                a.ID,
		CaseID:            a.CaseID,
		TemplateID:        a.TemplateID,
		Status:            string(a.Status),
		ResponsibleUserID: a.ResponsibleUserID,
		CreatedAt:         a.CreatedAt.Format(timeFormat),
		DueAt:             formatTimePtr(a.DueAt),
		CompletedAt:       formatTimePtr(a.CompletedAt),
		CompletionNote:    a.CompletionNote,
	}
}

// StageHistoryResponse is one row of a case's stage history.
type StageHistoryResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	StageID   string `json:"stage_id" doc:"Occupied stage"`
	EnteredAt string `json:"entered_at" doc:"Entry timestamp (ISO 8601)"`
	LeftAt    string `json:"left_at,omitempty" doc:"Exit timestamp, absent for the open row (ISO 8601)"`
}

// CaseLogEntryResponse is one entry of a case's internal log.
type CaseLogEntryResponse struct {
	ID           string  `json:"id" doc:"Unique identifier"`
	Date         string  `json:"date" doc:"Entry date"`
	Description  string  `json:"description" doc:"Free-text content"`
	AuthorUserID *string `json:"author_user_id,omitempty" doc:"Authoring user, absent for engine entries"`
	CreatedAt    string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

// --- Intake ---

type IntakeCaseInput struct {
	Body struct {
		ClientID            string            `json:"client_id" minLength:"1" doc:"Owning client"`
		ProductID           string            `json:"product_id" minLength:"1" doc:"Service product"`
		StatusID            string            `json:"status_id" minLength:"1" doc:"Initial status"`
		ResponsibleLawyerID *string           `json:"responsible_lawyer_id,omitempty" doc:"Responsible lawyer"`
		EntryDate           string            `json:"entry_date" doc:"Case entry date (YYYY-MM-DD)"`
		FieldValues         map[string]string `json:"field_values,omitempty" doc:"Custom field values keyed by field ID"`
		ActorID             string            `json:"actor_id" minLength:"1" doc:"Acting user"`
	}
}

type IntakeCaseOutput struct {
	Body CaseResponse
}

// --- Get / List ---

type GetCaseInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type GetCaseOutput struct {
	Body CaseResponse
}

type ListCasesInput struct {
	ClientID  string `query:"client_id" required:"false" doc:"Filter by client"`
	ProductID string `query:"product_id" required:"false" doc:"Filter by product"`
	StatusID  string `query:"status_id" required:"false" doc:"Filter by status"`
	StageID   string `query:"stage_id" required:"false" doc:"Filter by current stage"`
	FlowID    string `query:"flow_id" required:"false" doc:"Filter by workflow"`
	Limit     int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset    int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListCasesOutput struct {
	Body []CaseResponse
}

// --- Kanban ---

type KanbanInput struct {
	FlowID string `path:"flowID" doc:"Stage flow ID"`
}

type KanbanColumnResponse struct {
	Stage StageResponse  `json:"stage" doc:"The column's stage"`
	Cases []CaseResponse `json:"cases" doc:"Cases currently in the stage"`
}

type KanbanOutput struct {
	Body []KanbanColumnResponse
}

// --- Move stage ---

type MoveStageInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		StageID string `json:"stage_id" minLength:"1" doc:"Target stage"`
		ActorID string `json:"actor_id" minLength:"1" doc:"Acting user"`
	}
}

type MoveStageOutput struct {
	Body CaseResponse
}

// --- History / log ---

type CaseHistoryInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type CaseHistoryOutput struct {
	Body []StageHistoryResponse
}

type CaseLogInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type CaseLogOutput struct {
	Body []CaseLogEntryResponse
}

type AddLogEntryInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		Date        string `json:"date" doc:"Entry date (YYYY-MM-DD)"`
		Description string `json:"description" minLength:"1" doc:"Free-text content"`
		AuthorID    string `json:"author_id" minLength:"1" doc:"Authoring user"`
	}
}

type AddLogEntryOutput struct {
	Body CaseLogEntryResponse
}

// --- Action instances ---

type CaseActionsInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type CaseActionsOutput struct {
	Body []ActionInstanceResponse
}

type CompleteActionInput struct {
	ID   string `path:"id" doc:"Action instance ID"`
	Body struct {
		OptionID *string `json:"option_id,omitempty" doc:"Decision option taken, absent for a plain completion"`
		Note     string  `json:"note,omitempty" doc:"Completion note"`
		ActorID  string  `json:"actor_id" minLength:"1" doc:"Acting user"`
	}
}

type CompleteActionOutput struct {
	Status int
}

type ReopenActionInput struct {
	ID string `path:"id" doc:"Action instance ID"`
}

type ReopenActionOutput struct {
	Status int
}

type DeleteActionInput struct {
	ID string `path:"id" doc:"Action instance ID"`
}

type DeleteActionOutput struct {
	Status int
}

func registerCaseRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "intake-case",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases",
		Summary:     "Open a new case",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *IntakeCaseInput) (*IntakeCaseOutput, error) {
		entry, err := parseDate(input.Body.EntryDate)
		if err != nil {
			return nil, err
		}
		caso, err := svc.Cases.Intake(ctx, app.IntakeInput{
			ClientID:            input.Body.ClientID,
			ProductID:           input.Body.ProductID,
			StatusID:            input.Body.StatusID,
			ResponsibleLawyerID: input.Body.ResponsibleLawyerID,
			EntryDate:           entry,
			FieldValues:         input.Body.FieldValues,
			ActorID:             input.Body.ActorID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &IntakeCaseOutput{Body: toCaseResponse(caso)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-case",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}",
		Summary:     "Get a case by ID",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *GetCaseInput) (*GetCaseOutput, error) {
		caso, err := svc.Cases.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetCaseOutput{Body: toCaseResponse(caso)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cases",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases",
		Summary:     "List cases",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *ListCasesInput) (*ListCasesOutput, error) {
		cases, err := svc.Cases.List(ctx, domain.CaseFilter{
			ClientID:  input.ClientID,
			ProductID: input.ProductID,
			StatusID:  input.StatusID,
			StageID:   input.StageID,
			FlowID:    input.FlowID,
			Limit:     input.Limit,
			Offset:    input.Offset,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListCasesOutput{Body: toCaseResponses(cases)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "flow-kanban",
		Method:      http.MethodGet,
		Path:        "/api/v1/flows/{flowID}/kanban",
		Summary:     "Group a flow's cases by current stage",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *KanbanInput) (*KanbanOutput, error) {
		columns, err := svc.Cases.Kanban(ctx, input.FlowID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]KanbanColumnResponse, len(columns))
		for i, col := range columns {
			resp[i] = KanbanColumnResponse{
				Stage: toStageResponse(col.Stage),
				Cases: toCaseResponses(col.Cases),
			}
		}
		return &KanbanOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-case-stage",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases/{id}/stage",
		Summary:     "Move a case to another stage",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *MoveStageInput) (*MoveStageOutput, error) {
		caso, err := svc.Cases.MoveToStage(ctx, input.ID, input.Body.StageID, input.Body.ActorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &MoveStageOutput{Body: toCaseResponse(caso)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "case-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/history",
		Summary:     "Get a case's stage history",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CaseHistoryInput) (*CaseHistoryOutput, error) {
		rows, err := svc.Cases.History(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]StageHistoryResponse, len(rows))
		for i, h := range rows {
			resp[i] = StageHistoryResponse{
				ID:        h.ID,
				StageID:   h.StageID,
				EnteredAt: h.EnteredAt.Format(timeFormat),
				LeftAt:    formatTimePtr(h.LeftAt),
			}
		}
		return &CaseHistoryOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "case-log",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/log",
		Summary:     "Get a case's internal log",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *CaseLogInput) (*CaseLogOutput, error) {
		entries, err := svc.Cases.Log(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]CaseLogEntryResponse, len(entries))
		for i, e := range entries {
			resp[i] = toLogEntryResponse(e)
		}
		return &CaseLogOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-case-log-entry",
		Method:      http.MethodPost,
		Path:        "/api/v1/cases/{id}/log",
		Summary:     "Append a note to a case's internal log",
		Tags:        []string{"Cases"},
	}, func(ctx context.Context, input *AddLogEntryInput) (*AddLogEntryOutput, error) {
		date, err := parseDate(input.Body.Date)
		if err != nil {
			return nil, err
		}
		entry, err := svc.Cases.AddLogEntry(ctx, input.ID, date, input.Body.Description, input.Body.AuthorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AddLogEntryOutput{Body: toLogEntryResponse(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "case-actions",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/actions",
		Summary:     "List a case's action instances",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *CaseActionsInput) (*CaseActionsOutput, error) {
		instances, err := svc.Cases.Instances(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ActionInstanceResponse, len(instances))
		for i, a := range instances {
			resp[i] = toInstanceResponse(a)
		}
		return &CaseActionsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-action",
		Method:      http.MethodPost,
		Path:        "/api/v1/actions/{id}/complete",
		Summary:     "Complete an action, optionally through a decision option",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *CompleteActionInput) (*CompleteActionOutput, error) {
		err := svc.Cases.CompleteAction(ctx, input.ID, input.Body.OptionID, input.Body.Note, input.Body.ActorID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CompleteActionOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reopen-action",
		Method:      http.MethodPost,
		Path:        "/api/v1/actions/{id}/reopen",
		Summary:     "Reopen a completed action",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *ReopenActionInput) (*ReopenActionOutput, error) {
		if err := svc.Cases.ReopenAction(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &ReopenActionOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-action",
		Method:      http.MethodDelete,
		Path:        "/api/v1/actions/{id}",
		Summary:     "Delete an action instance",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *DeleteActionInput) (*DeleteActionOutput, error) {
		if err := svc.Cases.DeleteAction(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteActionOutput{Status: http.StatusNoContent}, nil
	})
}

func toLogEntryResponse(e domain.CaseLogEntry) CaseLogEntryResponse {
	return CaseLogEntryResponse{
		ID:           e.ID,
		Date:         e.Date.Format(dateFormat),
		Description:  e.Description,
		AuthorUserID: e.AuthorUserID,
		CreatedAt:    e.CreatedAt.Format(timeFormat),
	}
}
