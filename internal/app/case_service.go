package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// CaseService orchestrates case intake and the operator-facing actions
// around the workflow engine.
type CaseService struct {
	cases    domain.CaseRepository
	clients  domain.ClientRepository
	catalog  domain.CatalogRepository
	flows    domain.WorkflowRepository
	fields   *FieldService
	engine   *Engine
	drive    domain.Drive
	notifier domain.Notifier
	status   domain.StatusValidator
	logger   *slog.Logger
	now      func() time.Time
}

// NewCaseService creates a service with the given adapters.
func NewCaseService(
	cases domain.CaseRepository,
	clients domain.ClientRepository,
	catalog domain.CatalogRepository,
	flows domain.WorkflowRepository,
	fields *FieldService,
	engine *Engine,
	drive domain.Drive,
	notifier domain.Notifier,
	status domain.StatusValidator,
	logger *slog.Logger,
) *CaseService {
	return &CaseService{
		cases:    cases,
		clients:  clients,
		catalog:  catalog,
		flows:    flows,
		fields:   fields,
		engine:   engine,
		drive:    drive,
		notifier: notifier,
		status:   status,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IntakeInput carries everything needed to open a case.
type IntakeInput struct {
	ClientID            string
	ProductID           string
	StatusID            string
	ResponsibleLawyerID *string
	EntryDate           time.Time
	FieldValues         map[string]string // field ID -> raw value
	ActorID             string
}

// Intake opens a new case: it persists the record (title composed from the
// client/product field rule when one exists), stores custom field values,
// enters the first stage of the applicable flow, provisions the drive
// folder tree and dispatches the new-case notification. Flow absence,
// drive failures and notification failures are warnings; only the core
// persistence can fail the intake.
func (s *CaseService) Intake(ctx context.Context, input IntakeInput) (domain.Case, error) {
	actor, err := s.catalog.GetUser(ctx, input.ActorID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("loading acting user: %w", err)
	}
	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("loading client: %w", err)
	}
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("loading product: %w", err)
	}

	id, err := newID()
	if err != nil {
		return domain.Case{}, fmt.Errorf("generating case id: %w", err)
	}

	now := s.now()
	caso := domain.Case{
		ID:                  id,
		ClientID:            client.ID,
		ProductID:           product.ID,
		StatusID:            input.StatusID,
		ResponsibleLawyerID: input.ResponsibleLawyerID,
		EntryDate:           input.EntryDate,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	title, err := s.fields.ComposeTitle(ctx, client.ID, product.ID, input.FieldValues)
	if err != nil {
		s.logger.WarnContext(ctx, "composing case title", "case_id", id, "error", err)
	}
	caso.Title = title

	if err := s.cases.Create(ctx, caso); err != nil {
		return domain.Case{}, fmt.Errorf("creating case: %w", err)
	}

	for fieldID, value := range input.FieldValues {
		if err := s.fields.SetValue(ctx, domain.FieldValue{CaseID: id, FieldID: fieldID, Value: value}); err != nil {
			return domain.Case{}, fmt.Errorf("storing field value: %w", err)
		}
	}

	s.startWorkflow(ctx, &caso, actor)
	s.provisionDriveFolder(ctx, &caso, product)

	if err := s.notifier.Dispatch(ctx, domain.EventNewCase, caso.ID, map[string]string{
		"case_id":    caso.ID,
		"case_title": caso.Title,
		"client":     client.Name,
		"product":    product.Name,
	}); err != nil {
		s.logger.WarnContext(ctx, "new-case notification failed", "case_id", caso.ID, "error", err)
	}

	return s.cases.GetByID(ctx, caso.ID)
}

// startWorkflow resolves the flow for the case's client and product and
// enters its first stage. A pair without a flow, or a flow without stages,
// leaves the case outside any workflow.
func (s *CaseService) startWorkflow(ctx context.Context, caso *domain.Case, actor domain.User) {
	flow, err := s.flows.FlowForClientProduct(ctx, caso.ClientID, caso.ProductID)
	if errors.Is(err, domain.ErrNoFlowConfigured) {
		s.logger.InfoContext(ctx, "no stage flow for client and product",
			"case_id", caso.ID, "client_id", caso.ClientID, "product_id", caso.ProductID)
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "resolving stage flow", "case_id", caso.ID, "error", err)
		return
	}

	first, err := s.flows.FirstStage(ctx, flow.ID)
	if errors.Is(err, domain.ErrStageNotFound) {
		s.logger.WarnContext(ctx, "stage flow has no stages", "case_id", caso.ID, "flow_id", flow.ID)
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "loading first stage", "case_id", caso.ID, "error", err)
		return
	}

	if err := s.engine.Transition(ctx, caso, &first, actor); err != nil {
		s.logger.ErrorContext(ctx, "entering first stage", "case_id", caso.ID, "error", err)
	}
}

// provisionDriveFolder creates the case folder and the product's
// configured subfolders in the external drive. Best effort.
func (s *CaseService) provisionDriveFolder(ctx context.Context, caso *domain.Case, product domain.Product) {
	folder, err := s.drive.CreateFolder(ctx, caso.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "creating case drive folder", "case_id", caso.ID, "error", err)
		return
	}

	if err := s.cases.SetDriveFolder(ctx, caso.ID, folder.ID, folder.WebURL); err != nil {
		s.logger.WarnContext(ctx, "storing drive folder on case", "case_id", caso.ID, "error", err)
		return
	}
	caso.DriveFolderID = folder.ID
	caso.DriveFolderURL = folder.WebURL

	for _, name := range product.Subfolders {
		if _, err := s.drive.CreateChildFolder(ctx, folder.ID, sanitizeFolderName(name)); err != nil {
			s.logger.WarnContext(ctx, "creating drive subfolder",
				"case_id", caso.ID, "folder", name, "error", err)
		}
	}
}

// sanitizeFolderName replaces the characters the drive rejects.
func sanitizeFolderName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '-'
		}
		return r
	}, name)
}

// GetByID returns a case by its unique identifier.
func (s *CaseService) GetByID(ctx context.Context, id string) (domain.Case, error) {
	return s.cases.GetByID(ctx, id)
}

// List returns cases matching the given filter.
func (s *CaseService) List(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	return s.cases.List(ctx, filter)
}

// History returns a case's stage history, oldest first.
func (s *CaseService) History(ctx context.Context, caseID string) ([]domain.StageHistory, error) {
	return s.cases.HistoryForCase(ctx, caseID)
}

// Instances returns a case's action instances.
func (s *CaseService) Instances(ctx context.Context, caseID string) ([]domain.ActionInstance, error) {
	return s.cases.InstancesForCase(ctx, caseID)
}

// Log returns a case's internal log, newest first.
func (s *CaseService) Log(ctx context.Context, caseID string) ([]domain.CaseLogEntry, error) {
	return s.cases.LogForCase(ctx, caseID)
}

// AddLogEntry appends an operator note to a case's internal log.
func (s *CaseService) AddLogEntry(ctx context.Context, caseID string, date time.Time, description, authorID string) (domain.CaseLogEntry, error) {
	if _, err := s.cases.GetByID(ctx, caseID); err != nil {
		return domain.CaseLogEntry{}, err
	}
	id, err := newID()
	if err != nil {
		return domain.CaseLogEntry{}, fmt.Errorf("generating log entry id: %w", err)
	}
	author := authorID
	entry := domain.CaseLogEntry{
		ID:           id,
		CaseID:       caseID,
		Date:         date,
		Description:  description,
		AuthorUserID: &author,
		CreatedAt:    s.now(),
	}
	if err := s.cases.AppendLog(ctx, entry); err != nil {
		return domain.CaseLogEntry{}, fmt.Errorf("appending log entry: %w", err)
	}
	return entry, nil
}

// CompleteAction closes an action instance, optionally through one of its
// decision options. The completion is validated against the instance's
// current status before any side effect runs.
func (s *CaseService) CompleteAction(ctx context.Context, instanceID string, optionID *string, note, actorID string) error {
	instance, err := s.cases.GetInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	actor, err := s.catalog.GetUser(ctx, actorID)
	if err != nil {
		return fmt.Errorf("loading acting user: %w", err)
	}

	if _, err := s.status.Apply(ctx, instance.Status, domain.EventComplete); err != nil {
		return err
	}

	var option *domain.DecisionOption
	if optionID != nil {
		o, err := s.flows.GetOption(ctx, *optionID)
		if err != nil {
			return err
		}
		option = &o
	}

	return s.engine.ExecuteDecision(ctx, instance, option, note, actor)
}

// ReopenAction puts a completed instance back in pending, clearing its
// completion timestamp. Nothing else about the case changes.
func (s *CaseService) ReopenAction(ctx context.Context, instanceID string) error {
	instance, err := s.cases.GetInstance(ctx, instanceID)
	if err != nil {
		return err
	}

	next, err := s.status.Apply(ctx, instance.Status, domain.EventReopen)
	if err != nil {
		return err
	}

	instance.Status = next
	instance.CompletedAt = nil
	if err := s.cases.UpdateInstance(ctx, instance); err != nil {
		return fmt.Errorf("reopening action instance: %w", err)
	}
	return nil
}

// DeleteAction removes an action instance entirely.
func (s *CaseService) DeleteAction(ctx context.Context, instanceID string) error {
	if _, err := s.cases.GetInstance(ctx, instanceID); err != nil {
		return err
	}
	return s.cases.DeleteInstance(ctx, instanceID)
}

// MoveToStage transitions a case to an arbitrary stage, the path behind
// drag-and-drop on the kanban board.
func (s *CaseService) MoveToStage(ctx context.Context, caseID, stageID, actorID string) (domain.Case, error) {
	caso, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return domain.Case{}, err
	}
	stage, err := s.flows.GetStage(ctx, stageID)
	if err != nil {
		return domain.Case{}, err
	}
	actor, err := s.catalog.GetUser(ctx, actorID)
	if err != nil {
		return domain.Case{}, fmt.Errorf("loading acting user: %w", err)
	}

	if err := s.engine.Transition(ctx, &caso, &stage, actor); err != nil {
		return domain.Case{}, err
	}
	return s.cases.GetByID(ctx, caseID)
}

// KanbanColumn is one stage of a flow with the cases currently in it.
type KanbanColumn struct {
	Stage domain.Stage
	Cases []domain.Case
}

// Kanban groups a flow's cases by current stage, columns ordered by stage
// order.
func (s *CaseService) Kanban(ctx context.Context, flowID string) ([]KanbanColumn, error) {
	stages, err := s.flows.StagesForFlow(ctx, flowID)
	if err != nil {
		return nil, fmt.Errorf("loading flow stages: %w", err)
	}

	columns := make([]KanbanColumn, 0, len(stages))
	for _, stage := range stages {
		cases, err := s.cases.List(ctx, domain.CaseFilter{StageID: stage.ID})
		if err != nil {
			return nil, fmt.Errorf("listing cases for stage %q: %w", stage.ID, err)
		}
		columns = append(columns, KanbanColumn{Stage: stage, Cases: cases})
	}
	return columns, nil
}
