package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/aureonlegal/caseflow/internal/adapter/otel"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock repository ---

type mockCaseRepo struct {
	cases     map[string]domain.Case
	instances map[string]domain.ActionInstance
	log       []domain.CaseLogEntry
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{
		cases:     make(map[string]domain.Case),
		instances: make(map[string]domain.ActionInstance),
	}
}

func (m *mockCaseRepo) Create(_ context.Context, c domain.Case) error {
	m.cases[c.ID] = c
	return nil
}

func (m *mockCaseRepo) GetByID(_ context.Context, id string) (domain.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return domain.Case{}, domain.ErrCaseNotFound
	}
	return c, nil
}

func (m *mockCaseRepo) List(_ context.Context, _ domain.CaseFilter) ([]domain.Case, error) {
	out := make([]domain.Case, 0, len(m.cases))
	for _, c := range m.cases {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCaseRepo) Update(_ context.Context, c domain.Case) error {
	if _, ok := m.cases[c.ID]; !ok {
		return domain.ErrCaseNotFound
	}
	m.cases[c.ID] = c
	return nil
}

func (m *mockCaseRepo) SetCurrentStage(_ context.Context, caseID string, stageID *string, enteredAt *time.Time) error {
	c, ok := m.cases[caseID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	c.CurrentStageID = stageID
	c.StageEnteredAt = enteredAt
	m.cases[caseID] = c
	return nil
}

func (m *mockCaseRepo) SetStatus(_ context.Context, caseID, statusID string) error {
	c, ok := m.cases[caseID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	c.StatusID = statusID
	m.cases[caseID] = c
	return nil
}

func (m *mockCaseRepo) SetDriveFolder(_ context.Context, caseID, folderID, folderURL string) error {
	c, ok := m.cases[caseID]
	if !ok {
		return domain.ErrCaseNotFound
	}
	c.DriveFolderID = folderID
	c.DriveFolderURL = folderURL
	m.cases[caseID] = c
	return nil
}

func (m *mockCaseRepo) AppendHistory(_ context.Context, _ domain.StageHistory) error { return nil }
func (m *mockCaseRepo) OpenHistory(_ context.Context, _, _ string) (domain.StageHistory, bool, error) {
	return domain.StageHistory{}, false, nil
}
func (m *mockCaseRepo) CloseHistory(_ context.Context, _ string, _ time.Time) error { return nil }
func (m *mockCaseRepo) HistoryForCase(_ context.Context, _ string) ([]domain.StageHistory, error) {
	return nil, nil
}

func (m *mockCaseRepo) CreateInstance(_ context.Context, a domain.ActionInstance) error {
	m.instances[a.ID] = a
	return nil
}

func (m *mockCaseRepo) GetInstance(_ context.Context, id string) (domain.ActionInstance, error) {
	a, ok := m.instances[id]
	if !ok {
		return domain.ActionInstance{}, domain.ErrInstanceNotFound
	}
	return a, nil
}

func (m *mockCaseRepo) UpdateInstance(_ context.Context, a domain.ActionInstance) error {
	m.instances[a.ID] = a
	return nil
}

func (m *mockCaseRepo) DeleteInstance(_ context.Context, id string) error {
	delete(m.instances, id)
	return nil
}

func (m *mockCaseRepo) InstancesForCase(_ context.Context, _ string) ([]domain.ActionInstance, error) {
	return nil, nil
}

func (m *mockCaseRepo) OverdueInstances(_ context.Context, _ time.Time) ([]domain.ActionInstance, error) {
	return nil, nil
}

func (m *mockCaseRepo) AppendLog(_ context.Context, e domain.CaseLogEntry) error {
	m.log = append(m.log, e)
	return nil
}

func (m *mockCaseRepo) LogForCase(_ context.Context, _ string) ([]domain.CaseLogEntry, error) {
	return m.log, nil
}

// --- Tests ---

func TestTracingCaseRepository_Create_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockCaseRepo()
	repo := adapter.NewTracingCaseRepository(inner)

	if err := repo.Create(context.Background(), domain.Case{ID: "c-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "CaseRepository.Create" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "CaseRepository.Create")
	}
	assertAttribute(t, spans[0], "case.id", "c-1")
}

func TestTracingCaseRepository_GetByID_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	repo := adapter.NewTracingCaseRepository(newMockCaseRepo())

	_, err := repo.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTracingCaseRepository_List_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockCaseRepo()
	repo := adapter.NewTracingCaseRepository(inner)

	inner.cases["c-1"] = domain.Case{ID: "c-1"}
	inner.cases["c-2"] = domain.Case{ID: "c-2"}

	cases, err := repo.List(context.Background(), domain.CaseFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cases) != 2 {
		t.Errorf("got %d cases, want 2", len(cases))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "result.count", "2")
}

func TestTracingCaseRepository_SetCurrentStage_RecordsStage(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockCaseRepo()
	repo := adapter.NewTracingCaseRepository(inner)

	inner.cases["c-1"] = domain.Case{ID: "c-1"}

	stageID := "s-1"
	now := time.Now().UTC()
	if err := repo.SetCurrentStage(context.Background(), "c-1", &stageID, &now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "CaseRepository.SetCurrentStage" {
		t.Errorf("span name = %q", spans[0].Name)
	}
	assertAttribute(t, spans[0], "stage.id", "s-1")
}

func TestTracingCaseRepository_UpdateInstance_RecordsStatus(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockCaseRepo()
	repo := adapter.NewTracingCaseRepository(inner)

	if err := repo.UpdateInstance(context.Background(), domain.ActionInstance{
		ID: "a-1", Status: domain.InstanceDone,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "instance.status", "done")
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
