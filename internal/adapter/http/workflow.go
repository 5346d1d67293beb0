package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// StageFlowResponse is the API representation of a stage flow.
type StageFlowResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Display name"`
	ClientID  string `json:"client_id" doc:"Bound client"`
	ProductID string `json:"product_id" doc:"Bound product"`
}

func toFlowResponse(f domain.StageFlow) StageFlowResponse {
	return StageFlowResponse{ID: f.ID, Name: f.Name, ClientID: f.ClientID, ProductID: f.ProductID}
}

// StageResponse is the API representation of a stage.
type StageResponse struct {
	ID      string `json:"id" doc:"Unique identifier"`
	FlowID  string `json:"flow_id" doc:"Owning flow"`
	Name    string `json:"name" doc:"Display name"`
	Order   int    `json:"order" doc:"Position within the flow"`
	SLADays int    `json:"sla_days,omitempty" doc:"Expected days in the stage"`
}

func toStageResponse(s domain.Stage) StageResponse {
	return StageResponse{ID: s.ID, FlowID: s.FlowID, Name: s.Name, Order: s.Order, SLADays: s.SLADays}
}

// ActionTemplateResponse is the API representation of an action template.
type ActionTemplateResponse struct {
	ID           string  `json:"id" doc:"Unique identifier"`
	StageID      string  `json:"stage_id" doc:"Owning stage"`
	Title        string  `json:"title" doc:"Task title"`
	Instructions string  `json:"instructions,omitempty" doc:"Operator instructions"`
	DeadlineDays int     `json:"deadline_days" doc:"Days until the spawned instance is due"`
	DeadlineKind string  `json:"deadline_kind" doc:"How deadline days are counted"`
	Assignment   string  `json:"assignment" doc:"How the responsible user is resolved"`
	FixedUserID  *string `json:"fixed_user_id,omitempty" doc:"Configured user for fixed assignment"`
}

func toTemplateResponse(t domain.ActionTemplate) ActionTemplateResponse {
	return ActionTemplateResponse{
		ID:           t.ID,
		StageID:      t.StageID,
		Title:        t.Title,
		Instructions: t.Instructions,
		DeadlineDays: t.DeadlineDays,
		DeadlineKind: string(t.DeadlineKind),
		Assignment:   string(t.Assignment),
		FixedUserID:  t.FixedUserID,
	}
}

// DecisionOptionResponse is the API representation of a decision option.
type DecisionOptionResponse struct {
	ID                 string  `json:"id" doc:"Unique identifier"`
	TemplateID         string  `json:"template_id" doc:"Owning template"`
	Label              string  `json:"label" doc:"Button label"`
	AdvanceToNextStage bool    `json:"advance_to_next_stage" doc:"Whether taking the option advances the case"`
	JumpToStageID      *string `json:"jump_to_stage_id,omitempty" doc:"Stage to jump to"`
	SpawnTemplateID    *string `json:"spawn_template_id,omitempty" doc:"Extra template to instantiate"`
	WaitDays           int     `json:"wait_days,omitempty" doc:"Configured wait before the spawned action"`
	SetCaseStatusID    *string `json:"set_case_status_id,omitempty" doc:"Status to put the case in"`
	SendEmail          bool    `json:"send_email" doc:"Whether taking the option dispatches a notification"`
	EmailEventSlug     string  `json:"email_event_slug,omitempty" doc:"Event slug for the notification"`
}

func toOptionResponse(o domain.DecisionOption) DecisionOptionResponse {
	return DecisionOptionResponse{
		ID:                 o.ID,
		TemplateID:         o.TemplateID,
		Label:              o.Label,
		AdvanceToNextStage: o.AdvanceToNextStage,
		JumpToStageID:      o.JumpToStageID,
		SpawnTemplateID:    o.SpawnTemplateID,
		WaitDays:           o.WaitDays,
		SetCaseStatusID:    o.SetCaseStatusID,
		SendEmail:          o.SendEmail,
		EmailEventSlug:     o.EmailEventSlug,
	}
}

type CreateFlowInput struct {
	Body struct {
		Name      string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		ClientID  string `json:"client_id" minLength:"1" doc:"Bound client"`
		ProductID string `json:"product_id" minLength:"1" doc:"Bound product"`
	}
}

type CreateFlowOutput struct {
	Body StageFlowResponse
}

type GetFlowInput struct {
	ID string `path:"id" doc:"Flow ID"`
}

type GetFlowOutput struct {
	Body StageFlowResponse
}

type ListFlowsOutput struct {
	Body []StageFlowResponse
}

type CreateStageInput struct {
	FlowID string `path:"flowID" doc:"Flow ID"`
	Body   struct {
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Order   int    `json:"order" minimum:"1" doc:"Position within the flow"`
		SLADays int    `json:"sla_days,omitempty" minimum:"0" doc:"Expected days in the stage"`
	}
}

type CreateStageOutput struct {
	Body StageResponse
}

type ListStagesInput struct {
	FlowID string `path:"flowID" doc:"Flow ID"`
}

type ListStagesOutput struct {
	Body []StageResponse
}

type CreateTemplateInput struct {
	StageID string `path:"stageID" doc:"Stage ID"`
	Body    struct {
		Title        string  `json:"title" minLength:"1" maxLength:"255" doc:"Task title"`
		Instructions string  `json:"instructions,omitempty" doc:"Operator instructions"`
		DeadlineDays int     `json:"deadline_days,omitempty" minimum:"0" doc:"Days until the spawned instance is due"`
		DeadlineKind string  `json:"deadline_kind,omitempty" enum:"business,calendar" doc:"How deadline days are counted"`
		Assignment   string  `json:"assignment,omitempty" enum:"creator,case_responsible,fixed_user" doc:"How the responsible user is resolved"`
		FixedUserID  *string `json:"fixed_user_id,omitempty" doc:"Configured user for fixed assignment"`
	}
}

type CreateTemplateOutput struct {
	Body ActionTemplateResponse
}

type ListTemplatesInput struct {
	StageID string `path:"stageID" doc:"Stage ID"`
}

type ListTemplatesOutput struct {
	Body []ActionTemplateResponse
}

type CreateOptionInput struct {
	TemplateID string `path:"templateID" doc:"Template ID"`
	Body       struct {
		Label              string  `json:"label" minLength:"1" maxLength:"255" doc:"Button label"`
		AdvanceToNextStage bool    `json:"advance_to_next_stage,omitempty" doc:"Whether taking the option advances the case"`
		JumpToStageID      *string `json:"jump_to_stage_id,omitempty" doc:"Stage to jump to"`
		SpawnTemplateID    *string `json:"spawn_template_id,omitempty" doc:"Extra template to instantiate"`
		WaitDays           int     `json:"wait_days,omitempty" minimum:"0" doc:"Configured wait before the spawned action"`
		SetCaseStatusID    *string `json:"set_case_status_id,omitempty" doc:"Status to put the case in"`
		SendEmail          bool    `json:"send_email,omitempty" doc:"Whether taking the option dispatches a notification"`
		EmailEventSlug     string  `json:"email_event_slug,omitempty" doc:"Event slug for the notification"`
	}
}

type CreateOptionOutput struct {
	Body DecisionOptionResponse
}

type ListOptionsInput struct {
	TemplateID string `path:"templateID" doc:"Template ID"`
}

type ListOptionsOutput struct {
	Body []DecisionOptionResponse
}

func registerWorkflowRoutes(api huma.API, svc *app.WorkflowService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-flow",
		Method:      http.MethodPost,
		Path:        "/api/v1/flows",
		Summary:     "Create a stage flow for a client and product",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *CreateFlowInput) (*CreateFlowOutput, error) {
		flow, err := svc.CreateFlow(ctx, input.Body.Name, input.Body.ClientID, input.Body.ProductID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateFlowOutput{Body: toFlowResponse(flow)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-flow",
		Method:      http.MethodGet,
		Path:        "/api/v1/flows/{id}",
		Summary:     "Get a stage flow by ID",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *GetFlowInput) (*GetFlowOutput, error) {
		flow, err := svc.GetFlow(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetFlowOutput{Body: toFlowResponse(flow)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-flows",
		Method:      http.MethodGet,
		Path:        "/api/v1/flows",
		Summary:     "List stage flows",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, _ *struct{}) (*ListFlowsOutput, error) {
		flows, err := svc.ListFlows(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]StageFlowResponse, len(flows))
		for i, f := range flows {
			resp[i] = toFlowResponse(f)
		}
		return &ListFlowsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-stage",
		Method:      http.MethodPost,
		Path:        "/api/v1/flows/{flowID}/stages",
		Summary:     "Add a stage to a flow",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *CreateStageInput) (*CreateStageOutput, error) {
		stage, err := svc.CreateStage(ctx, input.FlowID, input.Body.Name, input.Body.Order, input.Body.SLADays)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateStageOutput{Body: toStageResponse(stage)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-stages",
		Method:      http.MethodGet,
		Path:        "/api/v1/flows/{flowID}/stages",
		Summary:     "List a flow's stages in order",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *ListStagesInput) (*ListStagesOutput, error) {
		stages, err := svc.StagesForFlow(ctx, input.FlowID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]StageResponse, len(stages))
		for i, s := range stages {
			resp[i] = toStageResponse(s)
		}
		return &ListStagesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-action-template",
		Method:      http.MethodPost,
		Path:        "/api/v1/stages/{stageID}/templates",
		Summary:     "Attach an action template to a stage",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *CreateTemplateInput) (*CreateTemplateOutput, error) {
		template, err := svc.CreateTemplate(ctx, domain.ActionTemplate{
			StageID:      input.StageID,
			Title:        input.Body.Title,
			Instructions: input.Body.Instructions,
			DeadlineDays: input.Body.DeadlineDays,
			DeadlineKind: domain.DeadlineKind(input.Body.DeadlineKind),
			Assignment:   domain.AssignmentRule(input.Body.Assignment),
			FixedUserID:  input.Body.FixedUserID,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateTemplateOutput{Body: toTemplateResponse(template)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-action-templates",
		Method:      http.MethodGet,
		Path:        "/api/v1/stages/{stageID}/templates",
		Summary:     "List a stage's action templates",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *ListTemplatesInput) (*ListTemplatesOutput, error) {
		templates, err := svc.TemplatesForStage(ctx, input.StageID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ActionTemplateResponse, len(templates))
		for i, t := range templates {
			resp[i] = toTemplateResponse(t)
		}
		return &ListTemplatesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-decision-option",
		Method:      http.MethodPost,
		Path:        "/api/v1/templates/{templateID}/options",
		Summary:     "Attach a decision option to a template",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *CreateOptionInput) (*CreateOptionOutput, error) {
		option, err := svc.CreateOption(ctx, domain.DecisionOption{
			TemplateID:         input.TemplateID,
			Label:              input.Body.Label,
			AdvanceToNextStage: input.Body.AdvanceToNextStage,
			JumpToStageID:      input.Body.JumpToStageID,
			SpawnTemplateID:    input.Body.SpawnTemplateID,
			WaitDays:           input.Body.WaitDays,
			SetCaseStatusID:    input.Body.SetCaseStatusID,
			SendEmail:          input.Body.SendEmail,
			EmailEventSlug:     input.Body.EmailEventSlug,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateOptionOutput{Body: toOptionResponse(option)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-decision-options",
		Method:      http.MethodGet,
		Path:        "/api/v1/templates/{templateID}/options",
		Summary:     "List a template's decision options",
		Tags:        []string{"Workflow"},
	}, func(ctx context.Context, input *ListOptionsInput) (*ListOptionsOutput, error) {
		options, err := svc.OptionsForTemplate(ctx, input.TemplateID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]DecisionOptionResponse, len(options))
		for i, o := range options {
			resp[i] = toOptionResponse(o)
		}
		return &ListOptionsOutput{Body: resp}, nil
	})
}
