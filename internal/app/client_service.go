package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// ClientService manages the client registry. Structural validation of
// intake payloads (person type, document formats, email) runs here, on top
// of whatever the transport layer already checked.
type ClientService struct {
	repo     domain.ClientRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewClientService creates a service backed by the given repository.
func NewClientService(repo domain.ClientRepository) *ClientService {
	return &ClientService{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and persists a new client.
func (s *ClientService) Create(ctx context.Context, client domain.Client) (domain.Client, error) {
	if err := s.validate.Struct(client); err != nil {
		return domain.Client{}, fmt.Errorf("validating client: %w", err)
	}

	id, err := newID()
	if err != nil {
		return domain.Client{}, fmt.Errorf("generating client id: %w", err)
	}

	now := s.now()
	client.ID = id
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := s.repo.Create(ctx, client); err != nil {
		return domain.Client{}, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// GetByID returns a client by its unique identifier.
func (s *ClientService) GetByID(ctx context.Context, id string) (domain.Client, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns clients matching the given filter.
func (s *ClientService) List(ctx context.Context, filter domain.ClientFilter) ([]domain.Client, error) {
	return s.repo.List(ctx, filter)
}

// Update validates and persists changes to a client.
func (s *ClientService) Update(ctx context.Context, client domain.Client) (domain.Client, error) {
	if err := s.validate.Struct(client); err != nil {
		return domain.Client{}, fmt.Errorf("validating client: %w", err)
	}
	client.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, client); err != nil {
		return domain.Client{}, fmt.Errorf("updating client: %w", err)
	}
	return client, nil
}
