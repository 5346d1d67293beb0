package domain

import "time"

// Event slugs the engine and services dispatch notifications under.
// Templates are bound to events by slug; an event without an active
// template is a no-op.
const (
	EventNewCase       = "novo-caso-criado"
	EventStageAdvance  = "avanco-etapa-workflow"
	EventActionOverdue = "acao-atrasada"
)

// Event is a notifiable occurrence templates can be attached to.
type Event struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Active      bool
}

// EmailTemplate holds the subject and body templates rendered for one
// event, plus the fixed recipient list. Only active templates are used;
// when several are active for a slug the first wins.
type EmailTemplate struct {
	ID              string
	EventID         string
	Subject         string
	Body            string
	FixedRecipients []string
	Active          bool
}

// Notification is the audit record of one dispatch attempt.
type Notification struct {
	ID         string
	EventSlug  string
	Recipients []string
	Subject    string
	SentAt     time.Time
	Success    bool
}

// EmailSettings is one SMTP server configuration row. At most one row is
// active at a time; activation atomically deactivates the others.
type EmailSettings struct {
	ID       string
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Active   bool
}

// Message is a rendered email ready for transport.
type Message struct {
	To      []string
	Subject string
	Body    string
}
