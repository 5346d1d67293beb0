package domain

import (
	"context"
	"time"
)

// ClientRepository defines the persistence contract for clients.
type ClientRepository interface {
	Create(ctx context.Context, client Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context, filter ClientFilter) ([]Client, error)
	Update(ctx context.Context, client Client) error
}

// ClientFilter holds optional criteria for listing clients.
type ClientFilter struct {
	PersonType *PersonType
	Search     string
	Limit      int
	Offset     int
}

// CatalogRepository persists the small reference entities cases point at:
// products, statuses, lawyers and the user accounts behind them.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)

	CreateStatus(ctx context.Context, s Status) error
	GetStatus(ctx context.Context, id string) (Status, error)
	ListStatuses(ctx context.Context) ([]Status, error)

	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)

	CreateLawyer(ctx context.Context, l Lawyer) error
	GetLawyer(ctx context.Context, id string) (Lawyer, error)
	ListLawyers(ctx context.Context) ([]Lawyer, error)
}

// WorkflowRepository persists the stage graph and action catalog. All of it
// is read-only at case-execution time; writes happen during configuration.
type WorkflowRepository interface {
	CreateFlow(ctx context.Context, f StageFlow) error
	GetFlow(ctx context.Context, id string) (StageFlow, error)
	// FlowForClientProduct resolves the single applicable flow for a
	// (client, product) pair, or ErrNoFlowConfigured.
	FlowForClientProduct(ctx context.Context, clientID, productID string) (StageFlow, error)
	ListFlows(ctx context.Context) ([]StageFlow, error)

	CreateStage(ctx context.Context, s Stage) error
	GetStage(ctx context.Context, id string) (Stage, error)
	StagesForFlow(ctx context.Context, flowID string) ([]Stage, error)
	// FirstStage returns the lowest-order stage of a flow, or
	// ErrStageNotFound for a flow without stages.
	FirstStage(ctx context.Context, flowID string) (Stage, error)
	// NextStage returns the stage with the smallest order strictly greater
	// than after, or ErrStageNotFound when none exists (flow end).
	NextStage(ctx context.Context, flowID string, after int) (Stage, error)

	CreateTemplate(ctx context.Context, t ActionTemplate) error
	GetTemplate(ctx context.Context, id string) (ActionTemplate, error)
	TemplatesForStage(ctx context.Context, stageID string) ([]ActionTemplate, error)

	CreateOption(ctx context.Context, o DecisionOption) error
	GetOption(ctx context.Context, id string) (DecisionOption, error)
	OptionsForTemplate(ctx context.Context, templateID string) ([]DecisionOption, error)
}

// CaseRepository persists cases together with their runtime workflow state:
// stage history, action instances and the internal log.
type CaseRepository interface {
	Create(ctx context.Context, c Case) error
	GetByID(ctx context.Context, id string) (Case, error)
	List(ctx context.Context, filter CaseFilter) ([]Case, error)
	Update(ctx context.Context, c Case) error
	// SetCurrentStage persists only the case's stage pointer and the
	// stage-entry timestamp (nil for a finished workflow).
	SetCurrentStage(ctx context.Context, caseID string, stageID *string, enteredAt *time.Time) error
	SetStatus(ctx context.Context, caseID, statusID string) error
	SetDriveFolder(ctx context.Context, caseID, folderID, folderURL string) error

	AppendHistory(ctx context.Context, h StageHistory) error
	// OpenHistory returns the case's history row with a null LeftAt for
	// the given stage. A missing row is not an error: ok is false.
	OpenHistory(ctx context.Context, caseID, stageID string) (StageHistory, bool, error)
	CloseHistory(ctx context.Context, historyID string, leftAt time.Time) error
	HistoryForCase(ctx context.Context, caseID string) ([]StageHistory, error)

	CreateInstance(ctx context.Context, a ActionInstance) error
	GetInstance(ctx context.Context, id string) (ActionInstance, error)
	UpdateInstance(ctx context.Context, a ActionInstance) error
	DeleteInstance(ctx context.Context, id string) error
	InstancesForCase(ctx context.Context, caseID string) ([]ActionInstance, error)
	// OverdueInstances returns pending instances whose due date is before
	// asOf, across all cases.
	OverdueInstances(ctx context.Context, asOf time.Time) ([]ActionInstance, error)

	AppendLog(ctx context.Context, e CaseLogEntry) error
	LogForCase(ctx context.Context, caseID string) ([]CaseLogEntry, error)
}

// CaseFilter holds optional criteria for listing cases.
type CaseFilter struct {
	ClientID  string
	ProductID string
	StatusID  string
	StageID   string
	FlowID    string
	Limit     int
	Offset    int
}

// FieldRepository persists the custom-field registry, the per
// (client, product) rules and the per-case values.
type FieldRepository interface {
	CreateField(ctx context.Context, f Field) error
	GetField(ctx context.Context, id string) (Field, error)
	ListFields(ctx context.Context) ([]Field, error)
	CreateFieldOption(ctx context.Context, o FieldOption) error
	OptionsForField(ctx context.Context, fieldID string) ([]FieldOption, error)

	CreateRule(ctx context.Context, r FieldRule) error
	// RuleForClientProduct resolves the field rule for a pair, or
	// ErrFieldNotFound when none is configured.
	RuleForClientProduct(ctx context.Context, clientID, productID string) (FieldRule, error)

	SetValue(ctx context.Context, v FieldValue) error
	ValuesForCase(ctx context.Context, caseID string) ([]FieldValue, error)
}

// FinanceRepository persists agreements, their installments and case
// expenses.
type FinanceRepository interface {
	// CreateAgreement stores the agreement and its pre-generated
	// installments together.
	CreateAgreement(ctx context.Context, a Agreement, installments []Installment) error
	GetAgreement(ctx context.Context, id string) (Agreement, error)
	AgreementsForCase(ctx context.Context, caseID string) ([]Agreement, error)
	DeleteAgreement(ctx context.Context, id string) error

	GetInstallment(ctx context.Context, id string) (Installment, error)
	InstallmentsForAgreement(ctx context.Context, agreementID string) ([]Installment, error)
	UpdateInstallment(ctx context.Context, i Installment) error

	CreateExpense(ctx context.Context, e Expense) error
	ExpensesForCase(ctx context.Context, caseID string) ([]Expense, error)
}

// TimesheetRepository persists per-case time entries.
type TimesheetRepository interface {
	Create(ctx context.Context, e TimesheetEntry) error
	GetByID(ctx context.Context, id string) (TimesheetEntry, error)
	ListForCase(ctx context.Context, caseID string) ([]TimesheetEntry, error)
	Delete(ctx context.Context, id string) error
	// TotalForCase sums worked time across a case's entries.
	TotalForCase(ctx context.Context, caseID string) (time.Duration, error)
}

// NotificationRepository persists events, email templates, the dispatch
// audit log and the SMTP settings rows.
type NotificationRepository interface {
	CreateEvent(ctx context.Context, e Event) error
	CreateTemplate(ctx context.Context, t EmailTemplate) error
	// ActiveTemplateForSlug returns the first active template bound to the
	// event slug, or ErrNoActiveTemplate.
	ActiveTemplateForSlug(ctx context.Context, slug string) (EmailTemplate, error)

	RecordNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, limit int) ([]Notification, error)

	CreateEmailSettings(ctx context.Context, s EmailSettings) error
	// ActiveEmailSettings returns the single active settings row, or
	// ErrSettingsNotFound.
	ActiveEmailSettings(ctx context.Context) (EmailSettings, error)
	// SetActiveEmailSettings activates one row and deactivates all others
	// in the same transaction.
	SetActiveEmailSettings(ctx context.Context, id string) error
}

// Notifier defines the contract for dispatching event notifications.
// Dispatch is fire-and-forget from the caller's perspective: rendering,
// transport and the audit record happen asynchronously.
type Notifier interface {
	Dispatch(ctx context.Context, slug, caseID string, payload map[string]string) error
}

// Drive is the external document-storage collaborator. IDs are opaque to
// the engine; they are stored on the case and passed back verbatim.
type Drive interface {
	CreateFolder(ctx context.Context, name string) (DriveItem, error)
	CreateChildFolder(ctx context.Context, parentID, name string) (DriveItem, error)
	ListChildren(ctx context.Context, folderID string) ([]DriveItem, error)
	Delete(ctx context.Context, itemID string) error
	PreviewLink(ctx context.Context, itemID string) (string, error)
}

// DriveItem is a folder or file in the external drive.
type DriveItem struct {
	ID       string
	Name     string
	IsFolder bool
	WebURL   string
}

// Mailer sends a rendered message using the given server settings.
type Mailer interface {
	Send(ctx context.Context, settings EmailSettings, msg Message) error
}

// StatusValidator checks operator events against an action instance's
// current status and returns the destination status.
type StatusValidator interface {
	Apply(ctx context.Context, current InstanceStatus, event InstanceEvent) (InstanceStatus, error)
}
