package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// WorkflowRepository implements domain.WorkflowRepository using SQLite.
type WorkflowRepository struct {
	db *sql.DB
}

var _ domain.WorkflowRepository = (*WorkflowRepository)(nil)

func (r *WorkflowRepository) CreateFlow(ctx context.Context, f domain.StageFlow) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_flows (id, name, client_id, product_id) VALUES (?, ?, ?, ?)`,
		f.ID, f.Name, f.ClientID, f.ProductID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.FlowConflictError{ClientID: f.ClientID, ProductID: f.ProductID}
		}
		return fmt.Errorf("inserting stage flow: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) GetFlow(ctx context.Context, id string) (domain.StageFlow, error) {
	return r.scanFlow(r.db.QueryRowContext(ctx,
		`SELECT id, name, client_id, product_id FROM stage_flows WHERE id = ?`, id,
	), domain.ErrFlowNotFound)
}

func (r *WorkflowRepository) FlowForClientProduct(ctx context.Context, clientID, productID string) (domain.StageFlow, error) {
	return r.scanFlow(r.db.QueryRowContext(ctx,
		`SELECT id, name, client_id, product_id FROM stage_flows
		 WHERE client_id = ? AND product_id = ?`, clientID, productID,
	), domain.ErrNoFlowConfigured)
}

func (r *WorkflowRepository) ListFlows(ctx context.Context) ([]domain.StageFlow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, client_id, product_id FROM stage_flows ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing stage flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.StageFlow
	for rows.Next() {
		var f domain.StageFlow
		if err := rows.Scan(&f.ID, &f.Name, &f.ClientID, &f.ProductID); err != nil {
			return nil, fmt.Errorf("scanning stage flow row: %w", err)
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

func (r *WorkflowRepository) scanFlow(row *sql.Row, notFound error) (domain.StageFlow, error) {
	var f domain.StageFlow
	err := row.Scan(&f.ID, &f.Name, &f.ClientID, &f.ProductID)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.StageFlow{}, notFound
		}
		return domain.StageFlow{}, fmt.Errorf("scanning stage flow: %w", err)
	}
	return f, nil
}

func (r *WorkflowRepository) CreateStage(ctx context.Context, s domain.Stage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stages (id, flow_id, name, ord, sla_days) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.FlowID, s.Name, s.Order, s.SLADays,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.StageOrderConflictError{FlowID: s.FlowID, Order: s.Order}
		}
		return fmt.Errorf("inserting stage: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) GetStage(ctx context.Context, id string) (domain.Stage, error) {
	return r.scanStage(r.db.QueryRowContext(ctx,
		`SELECT id, flow_id, name, ord, sla_days FROM stages WHERE id = ?`, id,
	))
}

func (r *WorkflowRepository) StagesForFlow(ctx context.Context, flowID string) ([]domain.Stage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, flow_id, name, ord, sla_days FROM stages
		 WHERE flow_id = ? ORDER BY ord`, flowID)
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()

	var stages []domain.Stage
	for rows.Next() {
		var s domain.Stage
		if err := rows.Scan(&s.ID, &s.FlowID, &s.Name, &s.Order, &s.SLADays); err != nil {
			return nil, fmt.Errorf("scanning stage row: %w", err)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *WorkflowRepository) FirstStage(ctx context.Context, flowID string) (domain.Stage, error) {
	return r.scanStage(r.db.QueryRowContext(ctx,
		`SELECT id, flow_id, name, ord, sla_days FROM stages
		 WHERE flow_id = ? ORDER BY ord LIMIT 1`, flowID,
	))
}

func (r *WorkflowRepository) NextStage(ctx context.Context, flowID string, after int) (domain.Stage, error) {
	return r.scanStage(r.db.QueryRowContext(ctx,
		`SELECT id, flow_id, name, ord, sla_days FROM stages
		 WHERE flow_id = ? AND ord > ? ORDER BY ord LIMIT 1`, flowID, after,
	))
}

func (r *WorkflowRepository) scanStage(row *sql.Row) (domain.Stage, error) {
	var s domain.Stage
	err := row.Scan(&s.ID, &s.FlowID, &s.Name, &s.Order, &s.SLADays)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Stage{}, domain.ErrStageNotFound
		}
		return domain.Stage{}, fmt.Errorf("scanning stage: %w", err)
	}
	return s, nil
}

func (r *WorkflowRepository) CreateTemplate(ctx context.Context, t domain.ActionTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO action_templates
		 (id, stage_id, title, instructions, deadline_days, deadline_kind, assignment, fixed_user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.StageID, t.Title, t.Instructions, t.DeadlineDays,
		string(t.DeadlineKind), string(t.Assignment), nullString(t.FixedUserID),
	)
	if err != nil {
		return fmt.Errorf("inserting action template: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) GetTemplate(ctx context.Context, id string) (domain.ActionTemplate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, stage_id, title, instructions, deadline_days, deadline_kind, assignment, fixed_user_id
		 FROM action_templates WHERE id = ?`, id)

	t, err := scanTemplate(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ActionTemplate{}, domain.ErrTemplateNotFound
		}
		return domain.ActionTemplate{}, fmt.Errorf("scanning action template: %w", err)
	}
	return t, nil
}

func (r *WorkflowRepository) TemplatesForStage(ctx context.Context, stageID string) ([]domain.ActionTemplate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, stage_id, title, instructions, deadline_days, deadline_kind, assignment, fixed_user_id
		 FROM action_templates WHERE stage_id = ? ORDER BY title`, stageID)
	if err != nil {
		return nil, fmt.Errorf("listing action templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.ActionTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning action template row: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func scanTemplate(scan func(...any) error) (domain.ActionTemplate, error) {
	var t domain.ActionTemplate
	var kind, assignment string
	var fixedUserID sql.NullString

	err := scan(&t.ID, &t.StageID, &t.Title, &t.Instructions, &t.DeadlineDays,
		&kind, &assignment, &fixedUserID)
	if err != nil {
		return domain.ActionTemplate{}, err
	}

	t.DeadlineKind = domain.DeadlineKind(kind)
	t.Assignment = domain.AssignmentRule(assignment)
	t.FixedUserID = stringPtr(fixedUserID)

	return t, nil
}

func (r *WorkflowRepository) CreateOption(ctx context.Context, o domain.DecisionOption) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO decision_options
		 (id, template_id, label, advance_to_next_stage, jump_to_stage_id,
		  spawn_template_id, wait_days, set_case_status_id, send_email, email_event_slug)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.TemplateID, o.Label, o.AdvanceToNextStage,
		nullString(o.JumpToStageID), nullString(o.SpawnTemplateID),
		o.WaitDays, nullString(o.SetCaseStatusID), o.SendEmail, o.EmailEventSlug,
	)
	if err != nil {
		return fmt.Errorf("inserting decision option: %w", err)
	}
	return nil
}

func (r *WorkflowRepository) GetOption(ctx context.Context, id string) (domain.DecisionOption, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, template_id, label, advance_to_next_stage, jump_to_stage_id,
		        spawn_template_id, wait_days, set_case_status_id, send_email, email_event_slug
		 FROM decision_options WHERE id = ?`, id)

	o, err := scanOption(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.DecisionOption{}, domain.ErrOptionNotFound
		}
		return domain.DecisionOption{}, fmt.Errorf("scanning decision option: %w", err)
	}
	return o, nil
}

func (r *WorkflowRepository) OptionsForTemplate(ctx context.Context, templateID string) ([]domain.DecisionOption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, template_id, label, advance_to_next_stage, jump_to_stage_id,
		        spawn_template_id, wait_days, set_case_status_id, send_email, email_event_slug
		 FROM decision_options WHERE template_id = ? ORDER BY label`, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing decision options: %w", err)
	}
	defer rows.Close()

	var options []domain.DecisionOption
	for rows.Next() {
		o, err := scanOption(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning decision option row: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func scanOption(scan func(...any) error) (domain.DecisionOption, error) {
	var o domain.DecisionOption
	var jumpTo, spawn, setStatus sql.NullString

	err := scan(&o.ID, &o.TemplateID, &o.Label, &o.AdvanceToNextStage,
		&jumpTo, &spawn, &o.WaitDays, &setStatus, &o.SendEmail, &o.EmailEventSlug)
	if err != nil {
		return domain.DecisionOption{}, err
	}

	o.JumpToStageID = stringPtr(jumpTo)
	o.SpawnTemplateID = stringPtr(spawn)
	o.SetCaseStatusID = stringPtr(setStatus)

	return o, nil
}
