package domain

// StageFlow is a named, ordered workflow bound to exactly one
// (client, product) pair. Flows are configuration: immutable while cases
// execute against them.
type StageFlow struct {
	ID        string
	Name      string
	ClientID  string
	ProductID string
}

// Stage is one ordered step within a flow. Order is unique per flow and
// traversal proceeds by strictly increasing order unless a decision option
// jumps to an arbitrary stage.
type Stage struct {
	ID      string
	FlowID  string
	Name    string
	Order   int
	SLADays int
}

// DeadlineKind selects how an action template's deadline is counted.
type DeadlineKind string

const (
	DeadlineBusinessDays DeadlineKind = "business"
	DeadlineCalendarDays DeadlineKind = "calendar"
)

// AssignmentRule selects how the responsible user of a new action instance
// is resolved at instantiation time.
type AssignmentRule string

const (
	// AssignCreator assigns the user who triggered the stage transition.
	AssignCreator AssignmentRule = "creator"
	// AssignCaseResponsible assigns the case's responsible lawyer's account.
	AssignCaseResponsible AssignmentRule = "case_responsible"
	// AssignFixedUser assigns the template's configured fixed user.
	AssignFixedUser AssignmentRule = "fixed_user"
)

// ActionTemplate is a task blueprint attached to a stage. Entering the
// stage spawns one ActionInstance per template.
type ActionTemplate struct {
	ID           string
	StageID      string
	Title        string
	Instructions string
	DeadlineDays int
	DeadlineKind DeadlineKind
	Assignment   AssignmentRule
	FixedUserID  *string
}

// DecisionOption is a labeled button that closes an action instance with
// configurable side effects. AdvanceToNextStage and JumpToStageID are not
// mutually exclusive in the data model; advance is evaluated first.
type DecisionOption struct {
	ID                 string
	TemplateID         string
	Label              string
	AdvanceToNextStage bool
	JumpToStageID      *string
	SpawnTemplateID    *string
	WaitDays           int
	SetCaseStatusID    *string
	SendEmail          bool
	EmailEventSlug     string
}
