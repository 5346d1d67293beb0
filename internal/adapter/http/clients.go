package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// ClientResponse is the API representation of a client.
type ClientResponse struct {
	ID                string `json:"id" doc:"Unique identifier"`
	PersonType        string `json:"person_type" doc:"PF for individuals, PJ for companies"`
	Name              string `json:"name" doc:"Display name"`
	Email             string `json:"email,omitempty" doc:"Contact email"`
	Phone             string `json:"phone,omitempty" doc:"Contact phone"`
	CNPJ              string `json:"cnpj,omitempty" doc:"Company registration number"`
	StateRegistration string `json:"state_registration,omitempty" doc:"State tax registration"`
	CPF               string `json:"cpf,omitempty" doc:"Individual registration number"`
	Zip               string `json:"zip,omitempty" doc:"Postal code"`
	Street            string `json:"street,omitempty" doc:"Street name"`
	Number            string `json:"number,omitempty" doc:"Street number"`
	District          string `json:"district,omitempty" doc:"District"`
	City              string `json:"city,omitempty" doc:"City"`
	State             string `json:"state,omitempty" doc:"State abbreviation"`
	CreatedAt         string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt         string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toClientResponse(c domain.Client) ClientResponse {
	return ClientResponse{
		ID:                c.ID,
		PersonType:        string(c.PersonType),
		Name:              c.Name,
		Email:             c.Email,
		Phone:             c.Phone,
		CNPJ:              c.CNPJ,
		StateRegistration: c.StateRegistration,
		CPF:               c.CPF,
		Zip:               c.Zip,
		Street:            c.Street,
		Number:            c.Number,
		District:          c.District,
		City:              c.City,
		State:             c.State,
		CreatedAt:         c.CreatedAt.Format(timeFormat),
		UpdatedAt:         c.UpdatedAt.Format(timeFormat),
	}
}

// ClientPayload is the writable part of a client record.
type ClientPayload struct {
	PersonType        string `json:"person_type" enum:"PF,PJ" doc:"PF for individuals, PJ for companies"`
	Name              string `json:"name" minLength:"1" maxLength:"150" doc:"Display name"`
	Email             string `json:"email,omitempty" doc:"Contact email"`
	Phone             string `json:"phone,omitempty" maxLength:"20" doc:"Contact phone"`
	CNPJ              string `json:"cnpj,omitempty" doc:"Company registration number (formatted)"`
	StateRegistration string `json:"state_registration,omitempty" doc:"State tax registration"`
	CPF               string `json:"cpf,omitempty" doc:"Individual registration number (formatted)"`
	Zip               string `json:"zip,omitempty" doc:"Postal code"`
	Street            string `json:"street,omitempty" doc:"Street name"`
	Number            string `json:"number,omitempty" doc:"Street number"`
	District          string `json:"district,omitempty" doc:"District"`
	City              string `json:"city,omitempty" doc:"City"`
	State             string `json:"state,omitempty" doc:"State abbreviation"`
}

func (p ClientPayload) toDomain() domain.Client {
	return domain.Client{
		PersonType:        domain.PersonType(p.PersonType),
		Name:              p.Name,
		Email:             p.Email,
		Phone:             p.Phone,
		CNPJ:              p.CNPJ,
		StateRegistration: p.StateRegistration,
		CPF:               p.CPF,
		Zip:               p.Zip,
		Street:            p.Street,
		Number:            p.Number,
		District:          p.District,
		City:              p.City,
		State:             p.State,
	}
}

type CreateClientInput struct {
	Body ClientPayload
}

type CreateClientOutput struct {
	Body ClientResponse
}

type GetClientInput struct {
	ID string `path:"id" doc:"Client ID"`
}

type GetClientOutput struct {
	Body ClientResponse
}

type ListClientsInput struct {
	PersonType string `query:"person_type" required:"false" doc:"Filter by person type (PF or PJ)"`
	Search     string `query:"search" required:"false" doc:"Filter by name substring"`
	Limit      int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset     int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListClientsOutput struct {
	Body []ClientResponse
}

type UpdateClientInput struct {
	ID   string `path:"id" doc:"Client ID"`
	Body ClientPayload
}

type UpdateClientOutput struct {
	Body ClientResponse
}

func registerClientRoutes(api huma.API, svc *app.ClientService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-client",
		Method:      http.MethodPost,
		Path:        "/api/v1/clients",
		Summary:     "Register a new client",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *CreateClientInput) (*CreateClientOutput, error) {
		client, err := svc.Create(ctx, input.Body.toDomain())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateClientOutput{Body: toClientResponse(client)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-client",
		Method:      http.MethodGet,
		Path:        "/api/v1/clients/{id}",
		Summary:     "Get a client by ID",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *GetClientInput) (*GetClientOutput, error) {
		client, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetClientOutput{Body: toClientResponse(client)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-clients",
		Method:      http.MethodGet,
		Path:        "/api/v1/clients",
		Summary:     "List clients",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *ListClientsInput) (*ListClientsOutput, error) {
		filter := domain.ClientFilter{
			Search: input.Search,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.PersonType != "" {
			pt := domain.PersonType(input.PersonType)
			filter.PersonType = &pt
		}

		clients, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]ClientResponse, len(clients))
		for i, c := range clients {
			resp[i] = toClientResponse(c)
		}
		return &ListClientsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-client",
		Method:      http.MethodPut,
		Path:        "/api/v1/clients/{id}",
		Summary:     "Update a client",
		Tags:        []string{"Clients"},
	}, func(ctx context.Context, input *UpdateClientInput) (*UpdateClientOutput, error) {
		client := input.Body.toDomain()
		client.ID = input.ID
		updated, err := svc.Update(ctx, client)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &UpdateClientOutput{Body: toClientResponse(updated)}, nil
	})
}
