package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// Engine is the workflow core: it owns the only code path that moves a
// case between stages and the execution of decision options that close
// action instances. Every step is an ordinary repository write; there is
// no transaction spanning the sequence, so a failure partway through
// leaves the rows written so far in place (the caller sees the error).
type Engine struct {
	cases    domain.CaseRepository
	flows    domain.WorkflowRepository
	catalog  domain.CatalogRepository
	notifier domain.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates the workflow engine with the given adapters.
func NewEngine(cases domain.CaseRepository, flows domain.WorkflowRepository, catalog domain.CatalogRepository, notifier domain.Notifier, logger *slog.Logger) *Engine {
	return &Engine{
		cases:    cases,
		flows:    flows,
		catalog:  catalog,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Transition moves a case to target, or out of the workflow entirely when
// target is nil. In order: the open history row of the stage being left is
// closed, the case's stage pointer is updated, a new history row is opened
// and one action instance per template of the new stage is created with
// its responsible and due date resolved.
func (e *Engine) Transition(ctx context.Context, caso *domain.Case, target *domain.Stage, actor domain.User) error {
	now := e.now()

	if caso.CurrentStageID != nil {
		old, err := e.flows.GetStage(ctx, *caso.CurrentStageID)
		if err != nil {
			return fmt.Errorf("loading stage being left: %w", err)
		}

		h, ok, err := e.cases.OpenHistory(ctx, caso.ID, old.ID)
		if err != nil {
			return fmt.Errorf("finding open history row: %w", err)
		}
		if ok {
			if err := e.cases.CloseHistory(ctx, h.ID, now); err != nil {
				return fmt.Errorf("closing history row: %w", err)
			}
			spent := int(now.Sub(h.EnteredAt).Hours() / 24)
			e.appendLog(ctx, caso.ID, actor.ID,
				fmt.Sprintf("[WORKFLOW] Stage '%s' finished. Time: %d days.", old.Name, spent))
		}
	}

	var stageID *string
	var enteredAt *time.Time
	if target != nil {
		stageID = &target.ID
		enteredAt = &now
	}
	if err := e.cases.SetCurrentStage(ctx, caso.ID, stageID, enteredAt); err != nil {
		return fmt.Errorf("updating current stage: %w", err)
	}
	caso.CurrentStageID = stageID
	caso.StageEnteredAt = enteredAt

	if target == nil {
		e.logger.InfoContext(ctx, "workflow finished", "case_id", caso.ID)
		return nil
	}

	historyID, err := newID()
	if err != nil {
		return fmt.Errorf("generating history id: %w", err)
	}
	if err := e.cases.AppendHistory(ctx, domain.StageHistory{
		ID:        historyID,
		CaseID:    caso.ID,
		StageID:   target.ID,
		EnteredAt: now,
	}); err != nil {
		return fmt.Errorf("opening history row: %w", err)
	}

	e.appendLog(ctx, caso.ID, actor.ID,
		fmt.Sprintf("[WORKFLOW] Case entered stage: '%s'.", target.Name))

	templates, err := e.flows.TemplatesForStage(ctx, target.ID)
	if err != nil {
		return fmt.Errorf("loading action templates: %w", err)
	}

	for _, tmpl := range templates {
		responsible, err := e.resolveResponsible(ctx, tmpl, *caso, actor)
		if err != nil {
			return fmt.Errorf("resolving responsible for template %q: %w", tmpl.ID, err)
		}

		instanceID, err := newID()
		if err != nil {
			return fmt.Errorf("generating instance id: %w", err)
		}
		if err := e.cases.CreateInstance(ctx, domain.ActionInstance{
			ID:                instanceID,
			CaseID:            caso.ID,
			TemplateID:        tmpl.ID,
			Status:            domain.InstancePending,
			ResponsibleUserID: responsible,
			CreatedAt:         now,
			DueAt:             dueDate(now, tmpl.DeadlineDays, tmpl.DeadlineKind),
		}); err != nil {
			return fmt.Errorf("creating action instance: %w", err)
		}
	}

	if len(templates) > 0 {
		e.logger.InfoContext(ctx, "stage actions created",
			"case_id", caso.ID,
			"stage", target.Name,
			"count", len(templates),
		)
	}

	// Stage-advance notification is best effort; delivery problems must
	// never undo a completed transition.
	if err := e.notifier.Dispatch(ctx, domain.EventStageAdvance, caso.ID, map[string]string{
		"case_id":    caso.ID,
		"case_title": caso.Title,
		"stage":      target.Name,
	}); err != nil {
		e.logger.WarnContext(ctx, "stage-advance notification failed",
			"case_id", caso.ID, "error", err)
	}

	return nil
}

// resolveResponsible applies the template's assignment rule. The actor who
// triggered the transition is the last-resort fallback for every rule.
func (e *Engine) resolveResponsible(ctx context.Context, tmpl domain.ActionTemplate, caso domain.Case, actor domain.User) (string, error) {
	switch tmpl.Assignment {
	case domain.AssignCreator:
		return actor.ID, nil

	case domain.AssignCaseResponsible:
		if caso.ResponsibleLawyerID == nil {
			return actor.ID, nil
		}
		lawyer, err := e.catalog.GetLawyer(ctx, *caso.ResponsibleLawyerID)
		if err != nil {
			return "", fmt.Errorf("loading responsible lawyer: %w", err)
		}
		return lawyer.UserID, nil

	case domain.AssignFixedUser:
		if tmpl.FixedUserID != nil && *tmpl.FixedUserID != "" {
			return *tmpl.FixedUserID, nil
		}
		return actor.ID, nil

	default:
		return actor.ID, nil
	}
}

// ExecuteDecision closes an action instance, optionally through one of its
// template's decision options. Closure always happens; each configured
// side effect is then applied independently. Advance takes priority over
// an explicit jump when both are set.
func (e *Engine) ExecuteDecision(ctx context.Context, instance domain.ActionInstance, option *domain.DecisionOption, note string, actor domain.User) error {
	now := e.now()

	instance.Status = domain.InstanceDone
	instance.CompletedAt = &now
	instance.CompletionNote = note
	if err := e.cases.UpdateInstance(ctx, instance); err != nil {
		return fmt.Errorf("closing action instance: %w", err)
	}

	tmpl, err := e.flows.GetTemplate(ctx, instance.TemplateID)
	if err != nil {
		return fmt.Errorf("loading action template: %w", err)
	}

	label := "Done"
	if option != nil {
		label = option.Label
	}
	entry := fmt.Sprintf("[ACTION] '%s' completed with decision '%s'.", tmpl.Title, label)
	if note != "" {
		entry += "\n" + note
	}
	e.appendLog(ctx, instance.CaseID, actor.ID, entry)

	if option == nil {
		return nil
	}

	caso, err := e.cases.GetByID(ctx, instance.CaseID)
	if err != nil {
		return fmt.Errorf("loading case: %w", err)
	}

	switch {
	case option.AdvanceToNextStage:
		if caso.CurrentStageID != nil {
			current, err := e.flows.GetStage(ctx, *caso.CurrentStageID)
			if err != nil {
				return fmt.Errorf("loading current stage: %w", err)
			}
			next, err := e.flows.NextStage(ctx, current.FlowID, current.Order)
			switch {
			case errors.Is(err, domain.ErrStageNotFound):
				// Last stage: the workflow ends here.
				if err := e.Transition(ctx, &caso, nil, actor); err != nil {
					return err
				}
			case err != nil:
				return fmt.Errorf("finding next stage: %w", err)
			default:
				if err := e.Transition(ctx, &caso, &next, actor); err != nil {
					return err
				}
			}
		}

	case option.JumpToStageID != nil:
		stage, err := e.flows.GetStage(ctx, *option.JumpToStageID)
		if err != nil {
			return fmt.Errorf("loading jump target stage: %w", err)
		}
		if err := e.Transition(ctx, &caso, &stage, actor); err != nil {
			return err
		}
	}

	if option.SpawnTemplateID != nil {
		// Simplified path: the acting user is responsible and no due date
		// is computed; the full resolution only runs on stage entry.
		instanceID, err := newID()
		if err != nil {
			return fmt.Errorf("generating instance id: %w", err)
		}
		if err := e.cases.CreateInstance(ctx, domain.ActionInstance{
			ID:                instanceID,
			CaseID:            caso.ID,
			TemplateID:        *option.SpawnTemplateID,
			Status:            domain.InstancePending,
			ResponsibleUserID: actor.ID,
			CreatedAt:         now,
		}); err != nil {
			return fmt.Errorf("spawning follow-up instance: %w", err)
		}
	}

	if option.SetCaseStatusID != nil {
		if err := e.cases.SetStatus(ctx, caso.ID, *option.SetCaseStatusID); err != nil {
			return fmt.Errorf("updating case status: %w", err)
		}
	}

	if option.SendEmail && option.EmailEventSlug != "" {
		if err := e.notifier.Dispatch(ctx, option.EmailEventSlug, caso.ID, map[string]string{
			"case_id":    caso.ID,
			"case_title": caso.Title,
			"decision":   option.Label,
			"action":     tmpl.Title,
		}); err != nil {
			e.logger.WarnContext(ctx, "decision notification failed",
				"case_id", caso.ID, "slug", option.EmailEventSlug, "error", err)
		}
	}

	return nil
}

// appendLog writes a case-log entry, logging instead of failing when the
// write does not succeed: log entries are commentary, not state.
func (e *Engine) appendLog(ctx context.Context, caseID, authorID, description string) {
	id, err := newID()
	if err != nil {
		e.logger.WarnContext(ctx, "generating log entry id", "error", err)
		return
	}
	author := authorID
	entry := domain.CaseLogEntry{
		ID:           id,
		CaseID:       caseID,
		Date:         e.now(),
		Description:  description,
		AuthorUserID: &author,
		CreatedAt:    e.now(),
	}
	if err := e.cases.AppendLog(ctx, entry); err != nil {
		e.logger.WarnContext(ctx, "appending case log entry",
			"case_id", caseID, "error", err)
	}
}
