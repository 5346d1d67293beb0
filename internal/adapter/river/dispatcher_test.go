package river_test

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	goriver "github.com/riverqueue/river"

	_ "modernc.org/sqlite"

	riveradapter "github.com/aureonlegal/caseflow/internal/adapter/river"
	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// captureMailer records sent messages instead of talking SMTP.
type captureMailer struct {
	mu   sync.Mutex
	sent []domain.Message
}

func (m *captureMailer) Send(ctx context.Context, settings domain.EmailSettings, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *captureMailer) messages() []domain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Message(nil), m.sent...)
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbPath := t.TempDir() + "/river_test.db"
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		t.Fatalf("setting WAL: %v", err)
	}

	return db
}

func setupClient(t *testing.T, db *sql.DB, mailer domain.Mailer) (*riveradapter.Client, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	notifications := app.NewNotificationService(store.Notifications, store.Cases, mailer, slog.Default())

	client, err := riveradapter.Setup(context.Background(), db, notifications)
	if err != nil {
		t.Fatalf("river setup: %v", err)
	}

	return client, store
}

func startClient(t *testing.T, client *riveradapter.Client) {
	t.Helper()

	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("river start: %v", err)
	}
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Stop(stopCtx); err != nil {
			t.Errorf("river stop: %v", err)
		}
	})
}

func TestDispatcher_DeliversThroughWorker(t *testing.T) {
	db := setupTestDB(t)
	mailer := &captureMailer{}
	client, store := setupClient(t, db, mailer)
	ctx := context.Background()

	if err := store.Notifications.CreateEvent(ctx, domain.Event{
		ID: "e-1", Name: "Novo caso", Slug: domain.EventNewCase, Active: true,
	}); err != nil {
		t.Fatalf("creating event: %v", err)
	}
	if err := store.Notifications.CreateTemplate(ctx, domain.EmailTemplate{
		ID: "tpl-1", EventID: "e-1", Subject: "Novo caso: {{.titulo}}", Body: "Caso {{.titulo}} criado.",
		FixedRecipients: []string{"ops@aureon.example"},
		Active:          true,
	}); err != nil {
		t.Fatalf("creating template: %v", err)
	}
	if err := store.Notifications.CreateEmailSettings(ctx, domain.EmailSettings{
		ID: "es-1", Host: "smtp.example", Port: 587, From: "caseflow@aureon.example", Active: true,
	}); err != nil {
		t.Fatalf("creating settings: %v", err)
	}

	// Subscribe to job completions before starting so we don't miss events.
	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	d := riveradapter.NewDispatcher(client)
	if err := d.Dispatch(ctx, domain.EventNewCase, "", map[string]string{"titulo": "Aviso 123"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case event := <-subscribeChan:
		if event.Job.Kind != "notification.dispatch" {
			t.Errorf("job kind = %q, want %q", event.Job.Kind, "notification.dispatch")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}

	sent := mailer.messages()
	if len(sent) != 1 {
		t.Fatalf("got %d sent messages, want 1", len(sent))
	}
	if sent[0].Subject != "Novo caso: Aviso 123" {
		t.Errorf("Subject = %q, want %q", sent[0].Subject, "Novo caso: Aviso 123")
	}
}

func TestDispatcher_PreservesJobArgs(t *testing.T) {
	db := setupTestDB(t)
	mailer := &captureMailer{}
	client, _ := setupClient(t, db, mailer)
	ctx := context.Background()

	subscribeChan, subscribeCancel := client.Subscribe(goriver.EventKindJobCompleted)
	defer subscribeCancel()

	startClient(t, client)

	d := riveradapter.NewDispatcher(client)
	if err := d.Dispatch(ctx, domain.EventStageAdvance, "c-42", map[string]string{"etapa": "Negociacao"}); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	select {
	case event := <-subscribeChan:
		argsStr := string(event.Job.EncodedArgs)
		for _, want := range []string{`"slug":"avanco-etapa-workflow"`, `"case_id":"c-42"`, `"etapa":"Negociacao"`} {
			if !strings.Contains(argsStr, want) {
				t.Errorf("encoded args missing %s, got: %s", want, argsStr)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job completion")
	}

	// No active template for the slug, so nothing is sent.
	if len(mailer.messages()) != 0 {
		t.Errorf("got %d sent messages, want 0", len(mailer.messages()))
	}
}
