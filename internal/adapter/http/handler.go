package http

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

const (
	timeFormat = "2006-01-02T15:04:05Z"
	dateFormat = "2006-01-02"
)

// Services bundles the application services the API routes depend on.
type Services struct {
	Cases         *app.CaseService
	Clients       *app.ClientService
	Workflows     *app.WorkflowService
	Catalog       *app.CatalogService
	Fields        *app.FieldService
	Timesheets    *app.TimesheetService
	Agreements    *app.AgreementService
	Notifications *app.NotificationService
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerCaseRoutes(api, svc)
	registerClientRoutes(api, svc.Clients)
	registerWorkflowRoutes(api, svc.Workflows)
	registerCatalogRoutes(api, svc.Catalog)
	registerFieldRoutes(api, svc.Fields)
	registerTimesheetRoutes(api, svc.Timesheets)
	registerFinanceRoutes(api, svc.Agreements)
	registerNotificationRoutes(api, svc.Notifications)
}

// parseDate parses a date-only value from a request body.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, huma.Error422UnprocessableEntity("invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeFormat)
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	for _, sentinel := range []error{
		domain.ErrClientNotFound,
		domain.ErrCaseNotFound,
		domain.ErrStageNotFound,
		domain.ErrFlowNotFound,
		domain.ErrTemplateNotFound,
		domain.ErrOptionNotFound,
		domain.ErrInstanceNotFound,
		domain.ErrAgreementNotFound,
		domain.ErrInstallmentNotFound,
		domain.ErrEntryNotFound,
		domain.ErrFieldNotFound,
		domain.ErrUserNotFound,
		domain.ErrLawyerNotFound,
		domain.ErrProductNotFound,
		domain.ErrStatusNotFound,
		domain.ErrSettingsNotFound,
		domain.ErrNoFlowConfigured,
	} {
		if errors.Is(err, sentinel) {
			return huma.Error404NotFound(sentinel.Error())
		}
	}

	var flowErr *domain.FlowConflictError
	if errors.As(err, &flowErr) {
		return huma.Error409Conflict(flowErr.Error())
	}

	var orderErr *domain.StageOrderConflictError
	if errors.As(err, &orderErr) {
		return huma.Error409Conflict(orderErr.Error())
	}

	var statusErr *domain.StatusTransitionError
	if errors.As(err, &statusErr) {
		return huma.Error422UnprocessableEntity(statusErr.Error())
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return huma.Error422UnprocessableEntity(fieldErrs.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
