package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/aureonlegal/caseflow/internal/app"
)

// NotificationWorker processes notification jobs from the River queue by
// handing them to the notification service, which renders the template and
// sends the email. A send failure is returned so River retries the job.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]

	notifications *app.NotificationService
}

// NewNotificationWorker creates a worker delivering through the given service.
func NewNotificationWorker(notifications *app.NotificationService) *NotificationWorker {
	return &NotificationWorker{notifications: notifications}
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	slog.InfoContext(ctx, "processing notification",
		"slug", job.Args.Slug,
		"case_id", job.Args.CaseID,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return w.notifications.Deliver(ctx, job.Args.Slug, job.Args.CaseID, job.Args.Payload)
}
