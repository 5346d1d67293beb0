package cron_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	croncore "github.com/aureonlegal/caseflow/internal/adapter/cron"
	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
	"github.com/aureonlegal/caseflow/internal/domain"
)

type recordingNotifier struct {
	dispatched []dispatch
}

type dispatch struct {
	slug    string
	caseID  string
	payload map[string]string
}

func (n *recordingNotifier) Dispatch(ctx context.Context, slug, caseID string, payload map[string]string) error {
	n.dispatched = append(n.dispatched, dispatch{slug: slug, caseID: caseID, payload: payload})
	return nil
}

func TestSweep_DispatchesOverdueOnly(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.Catalog.CreateUser(ctx, domain.User{ID: "u-1", Username: "ana", CreatedAt: now}); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	if err := store.Clients.Create(ctx, domain.Client{ID: "cl-1", PersonType: domain.PersonCorporate, Name: "Alfa", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("seeding client: %v", err)
	}
	if err := store.Catalog.CreateProduct(ctx, domain.Product{ID: "p-1", Name: "Regressos"}); err != nil {
		t.Fatalf("seeding product: %v", err)
	}
	if err := store.Catalog.CreateStatus(ctx, domain.Status{ID: "st-1", Name: "Ativo"}); err != nil {
		t.Fatalf("seeding status: %v", err)
	}
	if err := store.Workflows.CreateFlow(ctx, domain.StageFlow{ID: "f-1", Name: "Fluxo", ClientID: "cl-1", ProductID: "p-1"}); err != nil {
		t.Fatalf("seeding flow: %v", err)
	}
	if err := store.Workflows.CreateStage(ctx, domain.Stage{ID: "s-1", FlowID: "f-1", Name: "Triagem", Order: 10}); err != nil {
		t.Fatalf("seeding stage: %v", err)
	}
	if err := store.Workflows.CreateTemplate(ctx, domain.ActionTemplate{
		ID: "t-1", StageID: "s-1", Title: "Enviar proposta",
		DeadlineKind: domain.DeadlineBusinessDays, Assignment: domain.AssignCreator,
	}); err != nil {
		t.Fatalf("seeding template: %v", err)
	}
	if err := store.Cases.Create(ctx, domain.Case{
		ID: "c-1", Title: "Caso 1", ClientID: "cl-1", ProductID: "p-1", StatusID: "st-1",
		EntryDate: now, CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seeding case: %v", err)
	}

	past := now.AddDate(0, 0, -3)
	future := now.AddDate(0, 0, 3)
	for _, inst := range []domain.ActionInstance{
		{ID: "a-1", CaseID: "c-1", TemplateID: "t-1", Status: domain.InstancePending, ResponsibleUserID: "u-1", CreatedAt: now, DueAt: &past},
		{ID: "a-2", CaseID: "c-1", TemplateID: "t-1", Status: domain.InstancePending, ResponsibleUserID: "u-1", CreatedAt: now, DueAt: &future},
	} {
		if err := store.Cases.CreateInstance(ctx, inst); err != nil {
			t.Fatalf("seeding instance: %v", err)
		}
	}

	notifier := &recordingNotifier{}
	sweeper := croncore.NewSweeper(store.Cases, store.Workflows, notifier, slog.Default())
	sweeper.Sweep(ctx)

	if len(notifier.dispatched) != 1 {
		t.Fatalf("got %d dispatches, want 1", len(notifier.dispatched))
	}
	d := notifier.dispatched[0]
	if d.slug != domain.EventActionOverdue {
		t.Errorf("slug = %q, want %q", d.slug, domain.EventActionOverdue)
	}
	if d.caseID != "c-1" {
		t.Errorf("caseID = %q, want %q", d.caseID, "c-1")
	}
	if d.payload["action"] != "Enviar proposta" {
		t.Errorf("payload action = %q, want %q", d.payload["action"], "Enviar proposta")
	}
	if d.payload["case_title"] != "Caso 1" {
		t.Errorf("payload case_title = %q", d.payload["case_title"])
	}
}
