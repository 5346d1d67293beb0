package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// Compile-time check: Dispatcher implements domain.Notifier.
var _ domain.Notifier = (*Dispatcher)(nil)

// NotificationJobArgs carries one notification dispatch through the queue.
// River serializes this as JSON into its job table. The payload snapshots
// the template variables at publish time, so the worker only re-reads the
// template and settings rows.
type NotificationJobArgs struct {
	Slug    string            `json:"slug"`
	CaseID  string            `json:"case_id"`
	Payload map[string]string `json:"payload"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "notification.dispatch" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Dispatcher implements domain.Notifier by enqueuing River jobs.
type Dispatcher struct {
	client *Client
}

// NewDispatcher creates a dispatcher backed by the given River client.
func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Dispatch enqueues a notification as an async job in River.
func (d *Dispatcher) Dispatch(ctx context.Context, slug, caseID string, payload map[string]string) error {
	_, err := d.client.Insert(ctx, NotificationJobArgs{
		Slug:    slug,
		CaseID:  caseID,
		Payload: payload,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
