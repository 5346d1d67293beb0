package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// ProductResponse is the API representation of a product.
type ProductResponse struct {
	ID         string   `json:"id" doc:"Unique identifier"`
	Name       string   `json:"name" doc:"Display name"`
	Subfolders []string `json:"subfolders,omitempty" doc:"Drive folders created under a new case"`
}

// StatusResponse is the API representation of a case status.
type StatusResponse struct {
	ID   string `json:"id" doc:"Unique identifier"`
	Name string `json:"name" doc:"Display name"`
}

// UserResponse is the API representation of a user account.
type UserResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Username  string `json:"username" doc:"Login name"`
	FullName  string `json:"full_name,omitempty" doc:"Display name"`
	Email     string `json:"email,omitempty" doc:"Contact email"`
	IsStaff   bool   `json:"is_staff" doc:"Whether the account has staff access"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt.Format(timeFormat),
	}
}

// LawyerResponse is the API representation of a lawyer role.
type LawyerResponse struct {
	ID     string `json:"id" doc:"Unique identifier"`
	UserID string `json:"user_id" doc:"Backing user account"`
}

type CreateProductInput struct {
	Body struct {
		Name       string   `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Subfolders []string `json:"subfolders,omitempty" doc:"Drive folders created under a new case"`
	}
}

type CreateProductOutput struct {
	Body ProductResponse
}

type ListProductsOutput struct {
	Body []ProductResponse
}

type CreateStatusInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
	}
}

type CreateStatusOutput struct {
	Body StatusResponse
}

type ListStatusesOutput struct {
	Body []StatusResponse
}

type CreateUserInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"150" doc:"Login name"`
		FullName string `json:"full_name,omitempty" doc:"Display name"`
		Email    string `json:"email,omitempty" doc:"Contact email"`
		IsStaff  bool   `json:"is_staff,omitempty" doc:"Whether the account has staff access"`
	}
}

type CreateUserOutput struct {
	Body UserResponse
}

type ListUsersOutput struct {
	Body []UserResponse
}

type CreateLawyerInput struct {
	Body struct {
		UserID string `json:"user_id" minLength:"1" doc:"Backing user account"`
	}
}

type CreateLawyerOutput struct {
	Body LawyerResponse
}

type ListLawyersOutput struct {
	Body []LawyerResponse
}

func registerCatalogRoutes(api huma.API, svc *app.CatalogService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-product",
		Method:      http.MethodPost,
		Path:        "/api/v1/products",
		Summary:     "Create a product",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *CreateProductInput) (*CreateProductOutput, error) {
		product, err := svc.CreateProduct(ctx, input.Body.Name, input.Body.Subfolders)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateProductOutput{Body: ProductResponse(product)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*ListProductsOutput, error) {
		products, err := svc.ListProducts(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]ProductResponse, len(products))
		for i, p := range products {
			resp[i] = ProductResponse(p)
		}
		return &ListProductsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses",
		Summary:     "Create a case status",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *CreateStatusInput) (*CreateStatusOutput, error) {
		status, err := svc.CreateStatus(ctx, input.Body.Name)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateStatusOutput{Body: StatusResponse(status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-statuses",
		Method:      http.MethodGet,
		Path:        "/api/v1/statuses",
		Summary:     "List case statuses",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*ListStatusesOutput, error) {
		statuses, err := svc.ListStatuses(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]StatusResponse, len(statuses))
		for i, s := range statuses {
			resp[i] = StatusResponse(s)
		}
		return &ListStatusesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-user",
		Method:      http.MethodPost,
		Path:        "/api/v1/users",
		Summary:     "Create a user account",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		user, err := svc.CreateUser(ctx, domain.User{
			Username: input.Body.Username,
			FullName: input.Body.FullName,
			Email:    input.Body.Email,
			IsStaff:  input.Body.IsStaff,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateUserOutput{Body: toUserResponse(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List user accounts",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		users, err := svc.ListUsers(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]UserResponse, len(users))
		for i, u := range users {
			resp[i] = toUserResponse(u)
		}
		return &ListUsersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-lawyer",
		Method:      http.MethodPost,
		Path:        "/api/v1/lawyers",
		Summary:     "Register a user as a responsible lawyer",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *CreateLawyerInput) (*CreateLawyerOutput, error) {
		lawyer, err := svc.CreateLawyer(ctx, input.Body.UserID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateLawyerOutput{Body: LawyerResponse(lawyer)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-lawyers",
		Method:      http.MethodGet,
		Path:        "/api/v1/lawyers",
		Summary:     "List responsible lawyers",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*ListLawyersOutput, error) {
		lawyers, err := svc.ListLawyers(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]LawyerResponse, len(lawyers))
		for i, l := range lawyers {
			resp[i] = LawyerResponse(l)
		}
		return &ListLawyersOutput{Body: resp}, nil
	})
}
