package app

import (
	"context"
	"fmt"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// WorkflowService manages the stage graph and action catalog
// configuration. Everything here is written during setup and read-only
// while cases execute.
type WorkflowService struct {
	flows domain.WorkflowRepository
}

// NewWorkflowService creates a service backed by the given repository.
func NewWorkflowService(flows domain.WorkflowRepository) *WorkflowService {
	return &WorkflowService{flows: flows}
}

// CreateFlow binds a new named flow to a (client, product) pair. The pair
// can carry at most one flow.
func (s *WorkflowService) CreateFlow(ctx context.Context, name, clientID, productID string) (domain.StageFlow, error) {
	id, err := newID()
	if err != nil {
		return domain.StageFlow{}, fmt.Errorf("generating flow id: %w", err)
	}
	f := domain.StageFlow{ID: id, Name: name, ClientID: clientID, ProductID: productID}
	if err := s.flows.CreateFlow(ctx, f); err != nil {
		return domain.StageFlow{}, fmt.Errorf("creating flow: %w", err)
	}
	return f, nil
}

// GetFlow returns a flow by its unique identifier.
func (s *WorkflowService) GetFlow(ctx context.Context, id string) (domain.StageFlow, error) {
	return s.flows.GetFlow(ctx, id)
}

// ListFlows returns all configured flows.
func (s *WorkflowService) ListFlows(ctx context.Context) ([]domain.StageFlow, error) {
	return s.flows.ListFlows(ctx)
}

// CreateStage appends an ordered stage to a flow.
func (s *WorkflowService) CreateStage(ctx context.Context, flowID, name string, order, slaDays int) (domain.Stage, error) {
	if _, err := s.flows.GetFlow(ctx, flowID); err != nil {
		return domain.Stage{}, err
	}
	id, err := newID()
	if err != nil {
		return domain.Stage{}, fmt.Errorf("generating stage id: %w", err)
	}
	stage := domain.Stage{ID: id, FlowID: flowID, Name: name, Order: order, SLADays: slaDays}
	if err := s.flows.CreateStage(ctx, stage); err != nil {
		return domain.Stage{}, fmt.Errorf("creating stage: %w", err)
	}
	return stage, nil
}

// StagesForFlow returns a flow's stages ordered by their order field.
func (s *WorkflowService) StagesForFlow(ctx context.Context, flowID string) ([]domain.Stage, error) {
	return s.flows.StagesForFlow(ctx, flowID)
}

// CreateTemplate attaches an action template to a stage.
func (s *WorkflowService) CreateTemplate(ctx context.Context, t domain.ActionTemplate) (domain.ActionTemplate, error) {
	if _, err := s.flows.GetStage(ctx, t.StageID); err != nil {
		return domain.ActionTemplate{}, err
	}
	if t.DeadlineKind == "" {
		t.DeadlineKind = domain.DeadlineBusinessDays
	}
	if t.Assignment == "" {
		t.Assignment = domain.AssignCreator
	}
	id, err := newID()
	if err != nil {
		return domain.ActionTemplate{}, fmt.Errorf("generating template id: %w", err)
	}
	t.ID = id
	if err := s.flows.CreateTemplate(ctx, t); err != nil {
		return domain.ActionTemplate{}, fmt.Errorf("creating action template: %w", err)
	}
	return t, nil
}

// TemplatesForStage returns a stage's action templates.
func (s *WorkflowService) TemplatesForStage(ctx context.Context, stageID string) ([]domain.ActionTemplate, error) {
	return s.flows.TemplatesForStage(ctx, stageID)
}

// CreateOption attaches a decision option to an action template.
func (s *WorkflowService) CreateOption(ctx context.Context, o domain.DecisionOption) (domain.DecisionOption, error) {
	if _, err := s.flows.GetTemplate(ctx, o.TemplateID); err != nil {
		return domain.DecisionOption{}, err
	}
	id, err := newID()
	if err != nil {
		return domain.DecisionOption{}, fmt.Errorf("generating option id: %w", err)
	}
	o.ID = id
	if err := s.flows.CreateOption(ctx, o); err != nil {
		return domain.DecisionOption{}, fmt.Errorf("creating decision option: %w", err)
	}
	return o, nil
}

// OptionsForTemplate returns a template's decision options.
func (s *WorkflowService) OptionsForTemplate(ctx context.Context, templateID string) ([]domain.DecisionOption, error) {
	return s.flows.OptionsForTemplate(ctx, templateID)
}
