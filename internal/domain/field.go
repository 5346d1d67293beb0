package domain

// FieldType enumerates the kinds of custom field a case can carry.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldInteger  FieldType = "integer"
	FieldDate     FieldType = "date"
	FieldURL      FieldType = "url"
	FieldSelect   FieldType = "select"
)

// Field is the registry entry for one custom field. Key is the stable
// template identifier ("valor_causa"), Label the display name.
type Field struct {
	ID    string
	Label string
	Key   string
	Type  FieldType
}

// FieldOption is one allowed value of a select-typed field.
type FieldOption struct {
	ID      string
	FieldID string
	Value   string
}

// FieldRule selects, per (client, product) pair, which custom fields apply
// and how the case title is composed. TitleFormat is a template over field
// keys, e.g. "Aviso: {{.aviso}} - Segurado: {{.segurado}}".
type FieldRule struct {
	ID          string
	ClientID    string
	ProductID   string
	FieldIDs    []string
	TitleFormat string
}

// FieldValue stores the value of one custom field for one case. Values are
// kept as text regardless of field type; typed interpretation happens at
// the edges.
type FieldValue struct {
	CaseID  string
	FieldID string
	Value   string
}
