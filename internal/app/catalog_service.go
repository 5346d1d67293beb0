package app

import (
	"context"
	"fmt"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// CatalogService manages the reference data cases hang off of:
// products, statuses, users and lawyers.
type CatalogService struct {
	catalog domain.CatalogRepository
}

// NewCatalogService creates a service backed by the given repository.
func NewCatalogService(catalog domain.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// CreateProduct registers a product and its drive subfolder layout.
func (s *CatalogService) CreateProduct(ctx context.Context, name string, subfolders []string) (domain.Product, error) {
	id, err := newID()
	if err != nil {
		return domain.Product{}, fmt.Errorf("generating product id: %w", err)
	}
	p := domain.Product{ID: id, Name: name, Subfolders: subfolders}
	if err := s.catalog.CreateProduct(ctx, p); err != nil {
		return domain.Product{}, fmt.Errorf("creating product: %w", err)
	}
	return p, nil
}

// ListProducts returns all products.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.ListProducts(ctx)
}

// CreateStatus registers a case status.
func (s *CatalogService) CreateStatus(ctx context.Context, name string) (domain.Status, error) {
	id, err := newID()
	if err != nil {
		return domain.Status{}, fmt.Errorf("generating status id: %w", err)
	}
	st := domain.Status{ID: id, Name: name}
	if err := s.catalog.CreateStatus(ctx, st); err != nil {
		return domain.Status{}, fmt.Errorf("creating status: %w", err)
	}
	return st, nil
}

// ListStatuses returns all statuses.
func (s *CatalogService) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	return s.catalog.ListStatuses(ctx)
}

// CreateUser registers a user account.
func (s *CatalogService) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	id, err := newID()
	if err != nil {
		return domain.User{}, fmt.Errorf("generating user id: %w", err)
	}
	u.ID = id
	if err := s.catalog.CreateUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// ListUsers returns all users.
func (s *CatalogService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.catalog.ListUsers(ctx)
}

// CreateLawyer promotes a user to a lawyer profile.
func (s *CatalogService) CreateLawyer(ctx context.Context, userID string) (domain.Lawyer, error) {
	if _, err := s.catalog.GetUser(ctx, userID); err != nil {
		return domain.Lawyer{}, err
	}
	id, err := newID()
	if err != nil {
		return domain.Lawyer{}, fmt.Errorf("generating lawyer id: %w", err)
	}
	l := domain.Lawyer{ID: id, UserID: userID}
	if err := s.catalog.CreateLawyer(ctx, l); err != nil {
		return domain.Lawyer{}, fmt.Errorf("creating lawyer: %w", err)
	}
	return l, nil
}

// ListLawyers returns all lawyer profiles.
func (s *CatalogService) ListLawyers(ctx context.Context) ([]domain.Lawyer, error) {
	return s.catalog.ListLawyers(ctx)
}
