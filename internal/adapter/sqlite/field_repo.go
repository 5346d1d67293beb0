package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// FieldRepository implements domain.FieldRepository using SQLite.
type FieldRepository struct {
	db *sql.DB
}

var _ domain.FieldRepository = (*FieldRepository)(nil)

func (r *FieldRepository) CreateField(ctx context.Context, f domain.Field) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO fields (id, label, key, type) VALUES (?, ?, ?, ?)`,
		f.ID, f.Label, f.Key, string(f.Type),
	)
	if err != nil {
		return fmt.Errorf("inserting field: %w", err)
	}
	return nil
}

func (r *FieldRepository) GetField(ctx context.Context, id string) (domain.Field, error) {
	var f domain.Field
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, label, key, type FROM fields WHERE id = ?`, id,
	).Scan(&f.ID, &f.Label, &f.Key, &typ)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Field{}, domain.ErrFieldNotFound
		}
		return domain.Field{}, fmt.Errorf("scanning field: %w", err)
	}
	f.Type = domain.FieldType(typ)
	return f, nil
}

func (r *FieldRepository) ListFields(ctx context.Context) ([]domain.Field, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, key, type FROM fields ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	defer rows.Close()

	var fields []domain.Field
	for rows.Next() {
		var f domain.Field
		var typ string
		if err := rows.Scan(&f.ID, &f.Label, &f.Key, &typ); err != nil {
			return nil, fmt.Errorf("scanning field row: %w", err)
		}
		f.Type = domain.FieldType(typ)
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

func (r *FieldRepository) CreateFieldOption(ctx context.Context, o domain.FieldOption) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO field_options (id, field_id, value) VALUES (?, ?, ?)`,
		o.ID, o.FieldID, o.Value,
	)
	if err != nil {
		return fmt.Errorf("inserting field option: %w", err)
	}
	return nil
}

func (r *FieldRepository) OptionsForField(ctx context.Context, fieldID string) ([]domain.FieldOption, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, field_id, value FROM field_options WHERE field_id = ? ORDER BY value`,
		fieldID)
	if err != nil {
		return nil, fmt.Errorf("listing field options: %w", err)
	}
	defer rows.Close()

	var options []domain.FieldOption
	for rows.Next() {
		var o domain.FieldOption
		if err := rows.Scan(&o.ID, &o.FieldID, &o.Value); err != nil {
			return nil, fmt.Errorf("scanning field option row: %w", err)
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

func (r *FieldRepository) CreateRule(ctx context.Context, rule domain.FieldRule) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO field_rules (id, client_id, product_id, title_format)
		 VALUES (?, ?, ?, ?)`,
		rule.ID, rule.ClientID, rule.ProductID, rule.TitleFormat,
	); err != nil {
		return fmt.Errorf("inserting field rule: %w", err)
	}
	for i, fieldID := range rule.FieldIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO field_rule_fields (rule_id, field_id, position) VALUES (?, ?, ?)`,
			rule.ID, fieldID, i,
		); err != nil {
			return fmt.Errorf("inserting field rule member: %w", err)
		}
	}

	return tx.Commit()
}

func (r *FieldRepository) RuleForClientProduct(ctx context.Context, clientID, productID string) (domain.FieldRule, error) {
	var rule domain.FieldRule
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, product_id, title_format FROM field_rules
		 WHERE client_id = ? AND product_id = ?`, clientID, productID,
	).Scan(&rule.ID, &rule.ClientID, &rule.ProductID, &rule.TitleFormat)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.FieldRule{}, domain.ErrFieldNotFound
		}
		return domain.FieldRule{}, fmt.Errorf("scanning field rule: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT field_id FROM field_rule_fields WHERE rule_id = ? ORDER BY position`,
		rule.ID)
	if err != nil {
		return domain.FieldRule{}, fmt.Errorf("listing field rule members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fieldID string
		if err := rows.Scan(&fieldID); err != nil {
			return domain.FieldRule{}, fmt.Errorf("scanning field rule member: %w", err)
		}
		rule.FieldIDs = append(rule.FieldIDs, fieldID)
	}
	return rule, rows.Err()
}

func (r *FieldRepository) SetValue(ctx context.Context, v domain.FieldValue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO field_values (case_id, field_id, value) VALUES (?, ?, ?)
		 ON CONFLICT (case_id, field_id) DO UPDATE SET value = excluded.value`,
		v.CaseID, v.FieldID, v.Value,
	)
	if err != nil {
		return fmt.Errorf("setting field value: %w", err)
	}
	return nil
}

func (r *FieldRepository) ValuesForCase(ctx context.Context, caseID string) ([]domain.FieldValue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT case_id, field_id, value FROM field_values WHERE case_id = ?`,
		caseID)
	if err != nil {
		return nil, fmt.Errorf("listing field values: %w", err)
	}
	defer rows.Close()

	var values []domain.FieldValue
	for rows.Next() {
		var v domain.FieldValue
		if err := rows.Scan(&v.CaseID, &v.FieldID, &v.Value); err != nil {
			return nil, fmt.Errorf("scanning field value row: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
