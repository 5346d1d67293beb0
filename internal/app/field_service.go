package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/aureonlegal/caseflow/internal/domain"
)

// FieldService manages the custom-field registry, the per-pair rules and
// the per-case values, including case-title composition.
type FieldService struct {
	fields domain.FieldRepository
	now    func() time.Time
}

// NewFieldService creates a service backed by the given repository.
func NewFieldService(fields domain.FieldRepository) *FieldService {
	return &FieldService{
		fields: fields,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateField registers a custom field. The key is derived from the label
// when not given.
func (s *FieldService) CreateField(ctx context.Context, label, key string, fieldType domain.FieldType) (domain.Field, error) {
	id, err := newID()
	if err != nil {
		return domain.Field{}, fmt.Errorf("generating field id: %w", err)
	}
	if key == "" {
		key = slugify(label)
	}
	f := domain.Field{ID: id, Label: label, Key: key, Type: fieldType}
	if err := s.fields.CreateField(ctx, f); err != nil {
		return domain.Field{}, fmt.Errorf("creating field: %w", err)
	}
	return f, nil
}

// AddOption adds an allowed value to a select field.
func (s *FieldService) AddOption(ctx context.Context, fieldID, value string) (domain.FieldOption, error) {
	field, err := s.fields.GetField(ctx, fieldID)
	if err != nil {
		return domain.FieldOption{}, err
	}
	if field.Type != domain.FieldSelect {
		return domain.FieldOption{}, fmt.Errorf("field %q is not a select field", field.Key)
	}
	id, err := newID()
	if err != nil {
		return domain.FieldOption{}, fmt.Errorf("generating option id: %w", err)
	}
	o := domain.FieldOption{ID: id, FieldID: fieldID, Value: value}
	if err := s.fields.CreateFieldOption(ctx, o); err != nil {
		return domain.FieldOption{}, fmt.Errorf("creating field option: %w", err)
	}
	return o, nil
}

// CreateRule binds a set of fields and a title format to a
// (client, product) pair.
func (s *FieldService) CreateRule(ctx context.Context, clientID, productID string, fieldIDs []string, titleFormat string) (domain.FieldRule, error) {
	id, err := newID()
	if err != nil {
		return domain.FieldRule{}, fmt.Errorf("generating rule id: %w", err)
	}
	r := domain.FieldRule{
		ID:          id,
		ClientID:    clientID,
		ProductID:   productID,
		FieldIDs:    fieldIDs,
		TitleFormat: titleFormat,
	}
	if err := s.fields.CreateRule(ctx, r); err != nil {
		return domain.FieldRule{}, fmt.Errorf("creating field rule: %w", err)
	}
	return r, nil
}

// SetValue stores one field value for a case, replacing any previous value.
func (s *FieldService) SetValue(ctx context.Context, v domain.FieldValue) error {
	return s.fields.SetValue(ctx, v)
}

// ValuesForCase returns a case's custom field values.
func (s *FieldService) ValuesForCase(ctx context.Context, caseID string) ([]domain.FieldValue, error) {
	return s.fields.ValuesForCase(ctx, caseID)
}

// ListFields returns the full field registry.
func (s *FieldService) ListFields(ctx context.Context) ([]domain.Field, error) {
	return s.fields.ListFields(ctx)
}

// ComposeTitle renders the case title from the pair's rule and the given
// values (keyed by field ID). A pair without a rule, or a rule without a
// title format, yields an empty title.
func (s *FieldService) ComposeTitle(ctx context.Context, clientID, productID string, values map[string]string) (string, error) {
	rule, err := s.fields.RuleForClientProduct(ctx, clientID, productID)
	if errors.Is(err, domain.ErrFieldNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving field rule: %w", err)
	}
	if rule.TitleFormat == "" {
		return "", nil
	}

	// Template variables are field keys, not IDs.
	byKey := make(map[string]string, len(values))
	for fieldID, value := range values {
		field, err := s.fields.GetField(ctx, fieldID)
		if err != nil {
			return "", fmt.Errorf("loading field %q: %w", fieldID, err)
		}
		byKey[field.Key] = value
	}

	return renderTitle(rule.TitleFormat, byKey)
}

// renderTitle executes a title format template over field-key values.
// Missing keys render empty rather than failing the intake.
func renderTitle(format string, values map[string]string) (string, error) {
	tmpl, err := template.New("title").Option("missingkey=zero").Parse(format)
	if err != nil {
		return "", fmt.Errorf("parsing title format: %w", err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, values); err != nil {
		return "", fmt.Errorf("rendering title: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// slugify turns a display label into a stable template key.
func slugify(label string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
