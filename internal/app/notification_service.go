package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// NotificationService turns a dispatched event into a delivered email: it
// resolves the active template for the event slug, renders subject and
// body against the payload, sends through the active SMTP settings and
// records the attempt. Called from the queue worker, never inline from the
// engine.
type NotificationService struct {
	repo   domain.NotificationRepository
	cases  domain.CaseRepository
	mailer domain.Mailer
	logger *slog.Logger
	now    func() time.Time
}

// NewNotificationService creates a service with the given adapters.
func NewNotificationService(repo domain.NotificationRepository, cases domain.CaseRepository, mailer domain.Mailer, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		cases:  cases,
		mailer: mailer,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Deliver processes one dispatched event. Missing configuration (no active
// template, no active server, no recipients) skips the delivery without
// error; a transport failure is recorded and returned so the queue can
// retry.
func (s *NotificationService) Deliver(ctx context.Context, slug, caseID string, payload map[string]string) error {
	tmpl, err := s.repo.ActiveTemplateForSlug(ctx, slug)
	if errors.Is(err, domain.ErrNoActiveTemplate) {
		s.logger.InfoContext(ctx, "no active template for event, skipping", "slug", slug)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolving template for %q: %w", slug, err)
	}

	settings, err := s.repo.ActiveEmailSettings(ctx)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		s.logger.WarnContext(ctx, "no active email settings, skipping", "slug", slug)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading email settings: %w", err)
	}

	subject, err := renderTemplate("subject", tmpl.Subject, payload)
	if err != nil {
		return fmt.Errorf("rendering subject for %q: %w", slug, err)
	}
	body, err := renderTemplate("body", tmpl.Body, payload)
	if err != nil {
		return fmt.Errorf("rendering body for %q: %w", slug, err)
	}

	recipients := dedupeRecipients(tmpl.FixedRecipients)
	if len(recipients) == 0 {
		s.logger.WarnContext(ctx, "no recipients configured, skipping", "slug", slug)
		return nil
	}

	sendErr := s.mailer.Send(ctx, settings, domain.Message{
		To:      recipients,
		Subject: subject,
		Body:    body,
	})

	now := s.now()
	notificationID, idErr := newID()
	if idErr == nil {
		idErr = s.repo.RecordNotification(ctx, domain.Notification{
			ID:         notificationID,
			EventSlug:  slug,
			Recipients: recipients,
			Subject:    subject,
			SentAt:     now,
			Success:    sendErr == nil,
		})
	}
	if idErr != nil {
		s.logger.WarnContext(ctx, "recording notification", "slug", slug, "error", idErr)
	}

	if sendErr != nil {
		return fmt.Errorf("sending notification %q: %w", slug, sendErr)
	}

	if caseID != "" {
		s.appendEmailLog(ctx, caseID, slug, recipients, subject, body)
	}
	return nil
}

// appendEmailLog leaves the sent email in the case's internal log, summary
// and full content separated by the markers the log viewer splits on.
func (s *NotificationService) appendEmailLog(ctx context.Context, caseID, slug string, recipients []string, subject, body string) {
	id, err := newID()
	if err != nil {
		s.logger.WarnContext(ctx, "generating log entry id", "error", err)
		return
	}
	description := fmt.Sprintf("[EMAIL]::Event: %s|||To: %s\nSubject: %s\n\n--- Content ---\n%s",
		slug, strings.Join(recipients, ", "), subject, body)
	if err := s.cases.AppendLog(ctx, domain.CaseLogEntry{
		ID:          id,
		CaseID:      caseID,
		Date:        s.now(),
		Description: description,
		CreatedAt:   s.now(),
	}); err != nil {
		s.logger.WarnContext(ctx, "appending email log entry", "case_id", caseID, "error", err)
	}
}

// CreateEvent registers a notifiable event.
func (s *NotificationService) CreateEvent(ctx context.Context, name, slug, description string) (domain.Event, error) {
	id, err := newID()
	if err != nil {
		return domain.Event{}, fmt.Errorf("generating event id: %w", err)
	}
	e := domain.Event{ID: id, Name: name, Slug: slug, Description: description, Active: true}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return domain.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return e, nil
}

// CreateTemplate binds an email template to an event.
func (s *NotificationService) CreateTemplate(ctx context.Context, eventID, subject, body string, recipients []string) (domain.EmailTemplate, error) {
	id, err := newID()
	if err != nil {
		return domain.EmailTemplate{}, fmt.Errorf("generating template id: %w", err)
	}
	t := domain.EmailTemplate{
		ID:              id,
		EventID:         eventID,
		Subject:         subject,
		Body:            body,
		FixedRecipients: recipients,
		Active:          true,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return domain.EmailTemplate{}, fmt.Errorf("creating email template: %w", err)
	}
	return t, nil
}

// CreateEmailSettings stores an SMTP server configuration row, inactive
// until activated.
func (s *NotificationService) CreateEmailSettings(ctx context.Context, settings domain.EmailSettings) (domain.EmailSettings, error) {
	id, err := newID()
	if err != nil {
		return domain.EmailSettings{}, fmt.Errorf("generating settings id: %w", err)
	}
	settings.ID = id
	settings.Active = false
	if err := s.repo.CreateEmailSettings(ctx, settings); err != nil {
		return domain.EmailSettings{}, fmt.Errorf("creating email settings: %w", err)
	}
	return settings, nil
}

// ActivateEmailSettings makes one settings row the active server,
// deactivating every other row atomically.
func (s *NotificationService) ActivateEmailSettings(ctx context.Context, id string) error {
	return s.repo.SetActiveEmailSettings(ctx, id)
}

// RecentNotifications returns the latest dispatch audit rows.
func (s *NotificationService) RecentNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, limit)
}

// renderTemplate executes one template string over the event payload.
func renderTemplate(name, text string, payload map[string]string) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, payload); err != nil {
		return "", fmt.Errorf("executing %s template: %w", name, err)
	}
	return b.String(), nil
}

// dedupeRecipients trims, deduplicates and sorts the recipient list.
func dedupeRecipients(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
