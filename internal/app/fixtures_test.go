package app_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// recordingNotifier captures dispatches for assertions.
type recordingNotifier struct {
	mu         sync.Mutex
	dispatches []dispatch
}

type dispatch struct {
	Slug    string
	CaseID  string
	Payload map[string]string
}

func (n *recordingNotifier) Dispatch(_ context.Context, slug, caseID string, payload map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dispatches = append(n.dispatches, dispatch{Slug: slug, CaseID: caseID, Payload: payload})
	return nil
}

func (n *recordingNotifier) bySlug(slug string) []dispatch {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []dispatch
	for _, d := range n.dispatches {
		if d.Slug == slug {
			out = append(out, d)
		}
	}
	return out
}

// recordingDrive captures folder creation, answering locally.
type recordingDrive struct {
	folders    []string
	subfolders []string
}

func (d *recordingDrive) CreateFolder(_ context.Context, name string) (domain.DriveItem, error) {
	d.folders = append(d.folders, name)
	return domain.DriveItem{ID: "drv-" + name, Name: name, WebURL: "https://drive.test/" + name, IsFolder: true}, nil
}

func (d *recordingDrive) CreateChildFolder(_ context.Context, parentID, name string) (domain.DriveItem, error) {
	d.subfolders = append(d.subfolders, name)
	return domain.DriveItem{ID: parentID + "/" + name, Name: name, IsFolder: true}, nil
}

func (d *recordingDrive) ListChildren(_ context.Context, _ string) ([]domain.DriveItem, error) {
	return nil, nil
}

func (d *recordingDrive) Delete(_ context.Context, _ string) error { return nil }

func (d *recordingDrive) PreviewLink(_ context.Context, itemID string) (string, error) {
	return "https://drive.test/preview/" + itemID, nil
}

// instanceValidator mirrors the production status checks without the
// adapter dependency.
type instanceValidator struct{}

func (v *instanceValidator) Apply(_ context.Context, current domain.InstanceStatus, event domain.InstanceEvent) (domain.InstanceStatus, error) {
	for _, t := range domain.InstanceTransitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.StatusTransitionError{Event: event, Current: current}
}

// newTestStore opens an in-memory store with migrations applied.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

// seedWorld inserts the reference rows a case needs: an acting user, a
// client, a product with subfolders and a status.
type worldIDs struct {
	User    domain.User
	Client  domain.Client
	Product domain.Product
	Status  domain.Status
}

func seedWorld(t *testing.T, store *sqlite.Store) worldIDs {
	t.Helper()
	ctx := context.Background()

	user := domain.User{ID: "u-1", Username: "ana", FullName: "Ana Lima", Email: "ana@example.com", CreatedAt: time.Now().UTC()}
	if err := store.Catalog.CreateUser(ctx, user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}

	client := domain.Client{ID: "cl-1", PersonType: domain.PersonCorporate, Name: "Seguradora Alfa",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC()}
	if err := store.Clients.Create(ctx, client); err != nil {
		t.Fatalf("seeding client: %v", err)
	}

	product := domain.Product{ID: "p-1", Name: "Regressos", Subfolders: []string{"Documentos", "Propostas"}}
	if err := store.Catalog.CreateProduct(ctx, product); err != nil {
		t.Fatalf("seeding product: %v", err)
	}

	status := domain.Status{ID: "st-1", Name: "Ativo"}
	if err := store.Catalog.CreateStatus(ctx, status); err != nil {
		t.Fatalf("seeding status: %v", err)
	}

	return worldIDs{User: user, Client: client, Product: product, Status: status}
}

// seedFlow configures a flow with the given stages for the world's pair.
func seedFlow(t *testing.T, store *sqlite.Store, w worldIDs, stages ...domain.Stage) domain.StageFlow {
	t.Helper()
	ctx := context.Background()

	flow := domain.StageFlow{ID: "fl-1", Name: "Fluxo Regressos", ClientID: w.Client.ID, ProductID: w.Product.ID}
	if err := store.Workflows.CreateFlow(ctx, flow); err != nil {
		t.Fatalf("seeding flow: %v", err)
	}
	for _, stage := range stages {
		stage.FlowID = flow.ID
		if err := store.Workflows.CreateStage(ctx, stage); err != nil {
			t.Fatalf("seeding stage %q: %v", stage.ID, err)
		}
	}
	return flow
}

// mustCreateCase inserts a bare case outside any workflow.
func mustCreateCase(t *testing.T, store *sqlite.Store, id string, w worldIDs) domain.Case {
	t.Helper()

	now := time.Now().UTC()
	caso := domain.Case{
		ID:        id,
		Title:     "Caso " + id,
		ClientID:  w.Client.ID,
		ProductID: w.Product.ID,
		StatusID:  w.Status.ID,
		EntryDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.Cases.Create(context.Background(), caso); err != nil {
		t.Fatalf("seeding case %q: %v", id, err)
	}
	return caso
}

func testLogger() *slog.Logger {
	return slog.Default()
}
