package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// EventResponse is the API representation of a notifiable event.
type EventResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	Name        string `json:"name" doc:"Display name"`
	Slug        string `json:"slug" doc:"Stable dispatch identifier"`
	Description string `json:"description,omitempty" doc:"What triggers the event"`
	Active      bool   `json:"active" doc:"Whether dispatches for the event are delivered"`
}

// EmailTemplateResponse is the API representation of an email template.
type EmailTemplateResponse struct {
	ID              string   `json:"id" doc:"Unique identifier"`
	EventID         string   `json:"event_id" doc:"Bound event"`
	Subject         string   `json:"subject" doc:"Subject template"`
	Body            string   `json:"body" doc:"Body template"`
	FixedRecipients []string `json:"fixed_recipients,omitempty" doc:"Always-notified addresses"`
	Active          bool     `json:"active" doc:"Whether the template is used"`
}

// EmailSettingsResponse is the API representation of one SMTP configuration.
// The password is never echoed back.
type EmailSettingsResponse struct {
	ID       string `json:"id" doc:"Unique identifier"`
	Host     string `json:"host" doc:"SMTP host"`
	Port     int    `json:"port" doc:"SMTP port"`
	Username string `json:"username,omitempty" doc:"SMTP username"`
	From     string `json:"from" doc:"Sender address"`
	UseTLS   bool   `json:"use_tls" doc:"Whether to negotiate TLS"`
	Active   bool   `json:"active" doc:"Whether this configuration is in use"`
}

func toSettingsResponse(s domain.EmailSettings) EmailSettingsResponse {
	return EmailSettingsResponse{
		ID:       s.ID,
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		From:     s.From,
		UseTLS:   s.UseTLS,
		Active:   s.Active,
	}
}

// NotificationResponse is one dispatch audit record.
type NotificationResponse struct {
	ID         string   `json:"id" doc:"Unique identifier"`
	EventSlug  string   `json:"event_slug" doc:"Dispatched event"`
	Recipients []string `json:"recipients" doc:"Addresses the message went to"`
	Subject    string   `json:"subject" doc:"Rendered subject"`
	SentAt     string   `json:"sent_at" doc:"Dispatch timestamp (ISO 8601)"`
	Success    bool     `json:"success" doc:"Whether transport accepted the message"`
}

type CreateEventInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Slug        string `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:-[a-z0-9]+)*$" doc:"Stable dispatch identifier (lowercase, hyphens)"`
		Description string `json:"description,omitempty" doc:"What triggers the event"`
	}
}

type CreateEventOutput struct {
	Body EventResponse
}

type CreateEmailTemplateInput struct {
	Body struct {
		EventID         string   `json:"event_id" minLength:"1" doc:"Bound event"`
		Subject         string   `json:"subject" minLength:"1" doc:"Subject template"`
		Body            string   `json:"body" minLength:"1" doc:"Body template"`
		FixedRecipients []string `json:"fixed_recipients,omitempty" doc:"Always-notified addresses"`
	}
}

type CreateEmailTemplateOutput struct {
	Body EmailTemplateResponse
}

type CreateEmailSettingsInput struct {
	Body struct {
		Host     string `json:"host" minLength:"1" doc:"SMTP host"`
		Port     int    `json:"port" minimum:"1" maximum:"65535" doc:"SMTP port"`
		Username string `json:"username,omitempty" doc:"SMTP username"`
		Password string `json:"password,omitempty" doc:"SMTP password"`
		From     string `json:"from" minLength:"1" doc:"Sender address"`
		UseTLS   bool   `json:"use_tls,omitempty" doc:"Whether to negotiate TLS"`
	}
}

type CreateEmailSettingsOutput struct {
	Body EmailSettingsResponse
}

type ActivateEmailSettingsInput struct {
	ID string `path:"id" doc:"Email settings ID"`
}

type ActivateEmailSettingsOutput struct {
	Status int
}

type RecentNotificationsInput struct {
	Limit int `query:"limit" required:"false" default:"50" doc:"Max results"`
}

type RecentNotificationsOutput struct {
	Body []NotificationResponse
}

func registerNotificationRoutes(api huma.API, svc *app.NotificationService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-event",
		Method:      http.MethodPost,
		Path:        "/api/v1/events",
		Summary:     "Register a notifiable event",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *CreateEventInput) (*CreateEventOutput, error) {
		event, err := svc.CreateEvent(ctx, input.Body.Name, input.Body.Slug, input.Body.Description)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateEventOutput{Body: EventResponse{
			ID:          event.ID,
			Name:        event.Name,
			Slug:        event.Slug,
			Description: event.Description,
			Active:      event.Active,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-email-template",
		Method:      http.MethodPost,
		Path:        "/api/v1/email-templates",
		Summary:     "Attach an email template to an event",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *CreateEmailTemplateInput) (*CreateEmailTemplateOutput, error) {
		template, err := svc.CreateTemplate(ctx, input.Body.EventID, input.Body.Subject, input.Body.Body, input.Body.FixedRecipients)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateEmailTemplateOutput{Body: EmailTemplateResponse{
			ID:              template.ID,
			EventID:         template.EventID,
			Subject:         template.Subject,
			Body:            template.Body,
			FixedRecipients: template.FixedRecipients,
			Active:          template.Active,
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-email-settings",
		Method:      http.MethodPost,
		Path:        "/api/v1/email-settings",
		Summary:     "Add an SMTP configuration",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *CreateEmailSettingsInput) (*CreateEmailSettingsOutput, error) {
		settings, err := svc.CreateEmailSettings(ctx, domain.EmailSettings{
			Host:     input.Body.Host,
			Port:     input.Body.Port,
			Username: input.Body.Username,
			Password: input.Body.Password,
			From:     input.Body.From,
			UseTLS:   input.Body.UseTLS,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateEmailSettingsOutput{Body: toSettingsResponse(settings)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "activate-email-settings",
		Method:      http.MethodPost,
		Path:        "/api/v1/email-settings/{id}/activate",
		Summary:     "Make an SMTP configuration the active one",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *ActivateEmailSettingsInput) (*ActivateEmailSettingsOutput, error) {
		if err := svc.ActivateEmailSettings(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &ActivateEmailSettingsOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "recent-notifications",
		Method:      http.MethodGet,
		Path:        "/api/v1/notifications",
		Summary:     "List recent notification dispatches",
		Tags:        []string{"Notifications"},
	}, func(ctx context.Context, input *RecentNotificationsInput) (*RecentNotificationsOutput, error) {
		notifications, err := svc.RecentNotifications(ctx, input.Limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]NotificationResponse, len(notifications))
		for i, n := range notifications {
			resp[i] = NotificationResponse{
				ID:         n.ID,
				EventSlug:  n.EventSlug,
				Recipients: n.Recipients,
				Subject:    n.Subject,
				SentAt:     n.SentAt.Format(timeFormat),
				Success:    n.Success,
			}
		}
		return &RecentNotificationsOutput{Body: resp}, nil
	})
}
