// Package cron runs the periodic overdue-action sweep.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// Sweeper periodically scans for pending action instances past their due
// date and dispatches one overdue notification per instance.
type Sweeper struct {
	cases    domain.CaseRepository
	flows    domain.WorkflowRepository
	notifier domain.Notifier
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time
}

// NewSweeper creates a sweeper over the given repositories.
func NewSweeper(cases domain.CaseRepository, flows domain.WorkflowRepository, notifier domain.Notifier, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cases:    cases,
		flows:    flows,
		notifier: notifier,
		logger:   logger,
		cron:     cron.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep with the given cron spec (e.g. "0 7 * * *")
// and starts the scheduler.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep dispatches one overdue notification per overdue instance. Failures
// on single instances are logged and do not stop the scan.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()
	overdue, err := s.cases.OverdueInstances(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "scanning overdue actions", "error", err)
		return
	}
	if len(overdue) == 0 {
		return
	}

	s.logger.InfoContext(ctx, "overdue actions found", "count", len(overdue))

	for _, inst := range overdue {
		payload := map[string]string{
			"case_id": inst.CaseID,
			"due_at":  inst.DueAt.Format("02/01/2006"),
		}

		if tmpl, err := s.flows.GetTemplate(ctx, inst.TemplateID); err == nil {
			payload["action"] = tmpl.Title
		}
		if caso, err := s.cases.GetByID(ctx, inst.CaseID); err == nil {
			payload["case_title"] = caso.Title
		}

		if err := s.notifier.Dispatch(ctx, domain.EventActionOverdue, inst.CaseID, payload); err != nil {
			s.logger.WarnContext(ctx, "dispatching overdue notification",
				"instance_id", inst.ID, "error", err)
		}
	}
}
