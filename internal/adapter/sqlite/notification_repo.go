package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// NotificationRepository implements domain.NotificationRepository using
// SQLite. Recipient lists are stored newline-joined.
type NotificationRepository struct {
	db *sql.DB
}

var _ domain.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) CreateEvent(ctx context.Context, e domain.Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO events (id, name, slug, description, active) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Slug, e.Description, e.Active,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (r *NotificationRepository) CreateTemplate(ctx context.Context, t domain.EmailTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_templates (id, event_id, subject, body, fixed_recipients, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.EventID, t.Subject, t.Body, joinRecipients(t.FixedRecipients), t.Active,
	)
	if err != nil {
		return fmt.Errorf("inserting email template: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ActiveTemplateForSlug(ctx context.Context, slug string) (domain.EmailTemplate, error) {
	var t domain.EmailTemplate
	var recipients string
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.event_id, t.subject, t.body, t.fixed_recipients, t.active
		 FROM email_templates t
		 JOIN events e ON e.id = t.event_id
		 WHERE e.slug = ? AND e.active = 1 AND t.active = 1
		 ORDER BY t.id LIMIT 1`, slug,
	).Scan(&t.ID, &t.EventID, &t.Subject, &t.Body, &recipients, &t.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.EmailTemplate{}, domain.ErrNoActiveTemplate
		}
		return domain.EmailTemplate{}, fmt.Errorf("scanning email template: %w", err)
	}
	t.FixedRecipients = splitRecipients(recipients)
	return t, nil
}

func (r *NotificationRepository) RecordNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, event_slug, recipients, subject, sent_at, success)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.EventSlug, joinRecipients(n.Recipients), n.Subject,
		n.SentAt.Format(timeFormat), n.Success,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, limit int) ([]domain.Notification, error) {
	query := `SELECT id, event_slug, recipients, subject, sent_at, success
		 FROM notifications ORDER BY sent_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var recipients, sentAt string
		if err := rows.Scan(&n.ID, &n.EventSlug, &recipients, &n.Subject, &sentAt, &n.Success); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.Recipients = splitRecipients(recipients)
		n.SentAt, _ = time.Parse(timeFormat, sentAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) CreateEmailSettings(ctx context.Context, s domain.EmailSettings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO email_settings (id, host, port, username, password, sender, use_tls, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Host, s.Port, s.Username, s.Password, s.From, s.UseTLS, s.Active,
	)
	if err != nil {
		return fmt.Errorf("inserting email settings: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ActiveEmailSettings(ctx context.Context) (domain.EmailSettings, error) {
	var s domain.EmailSettings
	err := r.db.QueryRowContext(ctx,
		`SELECT id, host, port, username, password, sender, use_tls, active
		 FROM email_settings WHERE active = 1 LIMIT 1`,
	).Scan(&s.ID, &s.Host, &s.Port, &s.Username, &s.Password, &s.From, &s.UseTLS, &s.Active)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.EmailSettings{}, domain.ErrSettingsNotFound
		}
		return domain.EmailSettings{}, fmt.Errorf("scanning email settings: %w", err)
	}
	return s, nil
}

func (r *NotificationRepository) SetActiveEmailSettings(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE email_settings SET active = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("activating email settings: %w", err)
	}
	if err := rowsAffectedOrNotFound(result, domain.ErrSettingsNotFound); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE email_settings SET active = 0 WHERE id != ?`, id); err != nil {
		return fmt.Errorf("deactivating email settings: %w", err)
	}

	return tx.Commit()
}

func joinRecipients(recipients []string) string {
	return strings.Join(recipients, "\n")
}

func splitRecipients(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
