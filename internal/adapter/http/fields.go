package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// FieldResponse is the API representation of a custom field.
type FieldResponse struct {
	ID    string `json:"id" doc:"Unique identifier"`
	Label string `json:"label" doc:"Display name"`
	Key   string `json:"key" doc:"Stable template identifier"`
	Type  string `json:"type" doc:"Field kind"`
}

func toFieldResponse(f domain.Field) FieldResponse {
	return FieldResponse{ID: f.ID, Label: f.Label, Key: f.Key, Type: string(f.Type)}
}

// FieldRuleResponse is the API representation of a field rule.
type FieldRuleResponse struct {
	ID          string   `json:"id" doc:"Unique identifier"`
	ClientID    string   `json:"client_id" doc:"Bound client"`
	ProductID   string   `json:"product_id" doc:"Bound product"`
	FieldIDs    []string `json:"field_ids" doc:"Applicable fields, in display order"`
	TitleFormat string   `json:"title_format,omitempty" doc:"Case title template over field keys"`
}

// FieldValueResponse is one stored custom field value.
type FieldValueResponse struct {
	FieldID string `json:"field_id" doc:"The field"`
	Value   string `json:"value" doc:"Stored value"`
}

type CreateFieldInput struct {
	Body struct {
		Label string `json:"label" minLength:"1" maxLength:"255" doc:"Display name"`
		Key   string `json:"key" minLength:"1" maxLength:"100" pattern:"^[a-z0-9_]+$" doc:"Stable template identifier (lowercase, underscores)"`
		Type  string `json:"type" enum:"text,textarea,number,integer,date,url,select" doc:"Field kind"`
	}
}

type CreateFieldOutput struct {
	Body FieldResponse
}

type ListFieldsOutput struct {
	Body []FieldResponse
}

type AddFieldOptionInput struct {
	FieldID string `path:"fieldID" doc:"Field ID"`
	Body    struct {
		Value string `json:"value" minLength:"1" maxLength:"255" doc:"Allowed value"`
	}
}

type AddFieldOptionOutput struct {
	Body struct {
		ID    string `json:"id" doc:"Unique identifier"`
		Value string `json:"value" doc:"Allowed value"`
	}
}

type CreateFieldRuleInput struct {
	Body struct {
		ClientID    string   `json:"client_id" minLength:"1" doc:"Bound client"`
		ProductID   string   `json:"product_id" minLength:"1" doc:"Bound product"`
		FieldIDs    []string `json:"field_ids" minItems:"1" doc:"Applicable fields, in display order"`
		TitleFormat string   `json:"title_format,omitempty" doc:"Case title template over field keys"`
	}
}

type CreateFieldRuleOutput struct {
	Body FieldRuleResponse
}

type CaseFieldValuesInput struct {
	ID string `path:"id" doc:"Case ID"`
}

type CaseFieldValuesOutput struct {
	Body []FieldValueResponse
}

type SetFieldValueInput struct {
	ID   string `path:"id" doc:"Case ID"`
	Body struct {
		FieldID string `json:"field_id" minLength:"1" doc:"The field"`
		Value   string `json:"value" doc:"Value to store"`
	}
}

type SetFieldValueOutput struct {
	Status int
}

func registerFieldRoutes(api huma.API, svc *app.FieldService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-field",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields",
		Summary:     "Register a custom field",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, input *CreateFieldInput) (*CreateFieldOutput, error) {
		field, err := svc.CreateField(ctx, input.Body.Label, input.Body.Key, domain.FieldType(input.Body.Type))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateFieldOutput{Body: toFieldResponse(field)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-fields",
		Method:      http.MethodGet,
		Path:        "/api/v1/fields",
		Summary:     "List custom fields",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, _ *struct{}) (*ListFieldsOutput, error) {
		fields, err := svc.ListFields(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]FieldResponse, len(fields))
		for i, f := range fields {
			resp[i] = toFieldResponse(f)
		}
		return &ListFieldsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-field-option",
		Method:      http.MethodPost,
		Path:        "/api/v1/fields/{fieldID}/options",
		Summary:     "Add an allowed value to a select field",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, input *AddFieldOptionInput) (*AddFieldOptionOutput, error) {
		option, err := svc.AddOption(ctx, input.FieldID, input.Body.Value)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &AddFieldOptionOutput{}
		out.Body.ID = option.ID
		out.Body.Value = option.Value
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-field-rule",
		Method:      http.MethodPost,
		Path:        "/api/v1/field-rules",
		Summary:     "Bind custom fields to a client and product",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, input *CreateFieldRuleInput) (*CreateFieldRuleOutput, error) {
		rule, err := svc.CreateRule(ctx, input.Body.ClientID, input.Body.ProductID, input.Body.FieldIDs, input.Body.TitleFormat)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateFieldRuleOutput{Body: FieldRuleResponse{
			ID:          rule.ID,
			ClientID:    rule.ClientID,
			ProductID:   rule.ProductID,
			FieldIDs:    rule.FieldIDs,
			TitleFormat: rule.TitleFormat,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "case-field-values",
		Method:      http.MethodGet,
		Path:        "/api/v1/cases/{id}/fields",
		Summary:     "Get a case's custom field values",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, input *CaseFieldValuesInput) (*CaseFieldValuesOutput, error) {
		values, err := svc.ValuesForCase(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]FieldValueResponse, len(values))
		for i, v := range values {
			resp[i] = FieldValueResponse{FieldID: v.FieldID, Value: v.Value}
		}
		return &CaseFieldValuesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-case-field-value",
		Method:      http.MethodPut,
		Path:        "/api/v1/cases/{id}/fields",
		Summary:     "Set a case's custom field value",
		Tags:        []string{"Fields"},
	}, func(ctx context.Context, input *SetFieldValueInput) (*SetFieldValueOutput, error) {
		err := svc.SetValue(ctx, domain.FieldValue{
			CaseID:  input.ID,
			FieldID: input.Body.FieldID,
			Value:   input.Body.Value,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &SetFieldValueOutput{Status: http.StatusNoContent}, nil
	})
}
