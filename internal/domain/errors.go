package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrCaseNotFound        = errors.New("case not found")
	ErrStageNotFound       = errors.New("stage not found")
	ErrFlowNotFound        = errors.New("stage flow not found")
	ErrTemplateNotFound    = errors.New("action template not found")
	ErrOptionNotFound      = errors.New("decision option not found")
	ErrInstanceNotFound    = errors.New("action instance not found")
	ErrAgreementNotFound   = errors.New("agreement not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrEntryNotFound       = errors.New("timesheet entry not found")
	ErrFieldNotFound       = errors.New("field not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrLawyerNotFound      = errors.New("lawyer not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrStatusNotFound      = errors.New("status not found")
	ErrSettingsNotFound    = errors.New("email settings not found")

	// ErrNoFlowConfigured signals that no stage flow exists for a
	// (client, product) pair. Configuration absence is not a failure:
	// the case simply runs without a workflow.
	ErrNoFlowConfigured = errors.New("no stage flow configured for client and product")

	// ErrNoActiveTemplate signals that an event has no active email
	// template; the dispatch is skipped.
	ErrNoActiveTemplate = errors.New("no active email template for event")
)

// FlowConflictError is returned when a second flow is configured for a
// (client, product) pair already bound to one.
type FlowConflictError struct {
	ClientID  string
	ProductID string
}

func (e *FlowConflictError) Error() string {
	return fmt.Sprintf("a stage flow is already configured for client %q and product %q", e.ClientID, e.ProductID)
}

// StageOrderConflictError is returned when a stage's order collides with
// another stage in the same flow.
type StageOrderConflictError struct {
	FlowID string
	Order  int
}

func (e *StageOrderConflictError) Error() string {
	return fmt.Sprintf("order %d is already taken in flow %q", e.Order, e.FlowID)
}

// StatusTransitionError is returned when an operator action is not valid
// for an instance's current status (e.g. reopening a pending instance).
type StatusTransitionError struct {
	Event   InstanceEvent
	Current InstanceStatus
}

func (e *StatusTransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from status %q", e.Event, e.Current)
}
