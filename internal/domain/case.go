package domain

import "time"

// Status is a configurable case status label (e.g. "Ativo", "Encerrado").
type Status struct {
	ID   string
	Name string
}

// Product is the service object a case is opened for. Subfolders lists the
// drive folders created under a new case's folder.
type Product struct {
	ID         string
	Name       string
	Subfolders []string
}

// Case is the business record moving through a workflow. CurrentStageID is
// nil before a flow is resolved and again once the flow finishes; it is
// mutated only by the engine's transition function.
type Case struct {
	ID                   string
	Title                string
	ClientID             string
	ProductID            string
	StatusID             string
	ResponsibleLawyerID  *string
	EntryDate            time.Time
	CurrentStageID       *string
	StageEnteredAt       *time.Time
	ClosedAt             *time.Time
	DriveFolderID        string
	DriveFolderURL       string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DaysInCurrentStage reports whole days since the case entered its current
// stage, never less than 1. Zero when the case has no stage.
func (c Case) DaysInCurrentStage(now time.Time) int {
	if c.CurrentStageID == nil || c.StageEnteredAt == nil {
		return 0
	}
	days := int(now.Sub(*c.StageEnteredAt).Hours() / 24)
	return max(days, 1)
}

// StageHistory records one case's dated occupancy of one stage. A nil
// LeftAt marks the row the case currently occupies; rows are never deleted.
type StageHistory struct {
	ID        string
	CaseID    string
	StageID   string
	EnteredAt time.Time
	LeftAt    *time.Time
}

// TimeInStage reports whole days spent in the stage, using now for rows
// still open, never less than 1.
func (h StageHistory) TimeInStage(now time.Time) int {
	end := now
	if h.LeftAt != nil {
		end = *h.LeftAt
	}
	days := int(end.Sub(h.EnteredAt).Hours() / 24)
	return max(days, 1)
}

// InstanceStatus is the lifecycle state of an action instance.
type InstanceStatus string

const (
	InstancePending InstanceStatus = "pending"
	InstanceDone    InstanceStatus = "done"
)

// InstanceEvent is an operator action that moves an instance between states.
type InstanceEvent string

const (
	EventComplete InstanceEvent = "complete"
	EventReopen   InstanceEvent = "reopen"
)

// InstanceTransition defines a valid instance state change.
type InstanceTransition struct {
	Event InstanceEvent
	Src   InstanceStatus
	Dst   InstanceStatus
}

// InstanceTransitions defines all valid action-instance state changes.
// Consumed by the FSM adapter.
var InstanceTransitions = []InstanceTransition{
	{Event: EventComplete, Src: InstancePending, Dst: InstanceDone},
	{Event: EventReopen, Src: InstanceDone, Dst: InstancePending},
}

// ActionInstance is a live or closed task spawned from an ActionTemplate
// for a specific case. Responsible is resolved once at creation and never
// recomputed.
type ActionInstance struct {
	ID                string
	CaseID            string
	TemplateID        string
	Status            InstanceStatus
	ResponsibleUserID string
	CreatedAt         time.Time
	DueAt             *time.Time
	CompletedAt       *time.Time
	CompletionNote    string
}

// Overdue reports whether a pending instance has passed its due date.
func (a ActionInstance) Overdue(now time.Time) bool {
	return a.Status == InstancePending && a.DueAt != nil && a.DueAt.Before(now)
}

// CaseLogEntry is one dated free-text entry in a case's internal log.
// The engine, the notifier and the finance flows append marker-prefixed
// entries ("[WORKFLOW]", "[EMAIL]", "[ACORDO]") alongside operator notes.
type CaseLogEntry struct {
	ID           string
	CaseID       string
	Date         time.Time
	Description  string
	AuthorUserID *string
	CreatedAt    time.Time
}
