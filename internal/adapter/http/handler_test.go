package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/aureonlegal/caseflow/internal/adapter/fsm"
	adapter "github.com/aureonlegal/caseflow/internal/adapter/http"
	"github.com/aureonlegal/caseflow/internal/adapter/sqlite"
	"github.com/aureonlegal/caseflow/internal/app"
	"github.com/aureonlegal/caseflow/internal/domain"
)

// noopNotifier is a no-op Notifier for tests.
type noopNotifier struct{}

func (n *noopNotifier) Dispatch(_ context.Context, _, _ string, _ map[string]string) error {
	return nil
}

// stubDrive answers folder creation locally, no external calls.
type stubDrive struct{}

func (d *stubDrive) CreateFolder(_ context.Context, name string) (domain.DriveItem, error) {
	return domain.DriveItem{ID: "drv-" + name, Name: name, WebURL: "https://drive.test/" + name, IsFolder: true}, nil
}

func (d *stubDrive) CreateChildFolder(_ context.Context, parentID, name string) (domain.DriveItem, error) {
	return domain.DriveItem{ID: parentID + "/" + name, Name: name, IsFolder: true}, nil
}

func (d *stubDrive) ListChildren(_ context.Context, _ string) ([]domain.DriveItem, error) {
	return nil, nil
}

func (d *stubDrive) Delete(_ context.Context, _ string) error { return nil }

func (d *stubDrive) PreviewLink(_ context.Context, itemID string) (string, error) {
	return "https://drive.test/preview/" + itemID, nil
}

// noopMailer drops messages.
type noopMailer struct{}

func (m *noopMailer) Send(_ context.Context, _ domain.EmailSettings, _ domain.Message) error {
	return nil
}

// newTestServer creates a full-stack httptest.Server with SQLite in-memory.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := slog.Default()
	notifier := &noopNotifier{}
	validator := fsm.New()

	fields := app.NewFieldService(store.Fields)
	engine := app.NewEngine(store.Cases, store.Workflows, store.Catalog, notifier, logger)

	svc := adapter.Services{
		Cases: app.NewCaseService(store.Cases, store.Clients, store.Catalog, store.Workflows,
			fields, engine, &stubDrive{}, notifier, validator, logger),
		Clients:       app.NewClientService(store.Clients),
		Workflows:     app.NewWorkflowService(store.Workflows),
		Catalog:       app.NewCatalogService(store.Catalog),
		Fields:        fields,
		Timesheets:    app.NewTimesheetService(store.Timesheets, store.Cases, store.Catalog, logger),
		Agreements:    app.NewAgreementService(store.Finance, store.Cases, logger),
		Notifications: app.NewNotificationService(store.Notifications, store.Cases, &noopMailer{}, logger),
	}

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("caseflow", "0.1.0"))
	adapter.Register(api, svc)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

// decodeBody decodes a JSON response body into out and closes it.
func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

// mustPost performs a POST expecting 200 and decodes the response into out.
func mustPost(t *testing.T, srv *httptest.Server, path, body string, out any) {
	t.Helper()

	resp := doRequest(t, http.MethodPost, srv.URL+path, body)
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("POST %s: status = %d, want %d (%s)", path, resp.StatusCode, http.StatusOK, payload)
	}
	decodeBody(t, resp, out)
}

// seedWorld creates the reference records an intake needs and returns their
// IDs: acting user, client, product, status.
type world struct {
	UserID    string
	ClientID  string
	ProductID string
	StatusID  string
}

func seedWorld(t *testing.T, srv *httptest.Server) world {
	t.Helper()

	var user adapter.UserResponse
	mustPost(t, srv, "/api/v1/users", `{"username":"ana","full_name":"Ana Lima","email":"ana@example.com"}`, &user)

	var client adapter.ClientResponse
	mustPost(t, srv, "/api/v1/clients", `{"person_type":"PJ","name":"Seguradora Alfa"}`, &client)

	var product adapter.ProductResponse
	mustPost(t, srv, "/api/v1/products", `{"name":"Regressos","subfolders":["Documentos","Propostas"]}`, &product)

	var status adapter.StatusResponse
	mustPost(t, srv, "/api/v1/statuses", `{"name":"Ativo"}`, &status)

	return world{UserID: user.ID, ClientID: client.ID, ProductID: product.ID, StatusID: status.ID}
}

// mustIntakeCase opens a case through the API.
func mustIntakeCase(t *testing.T, srv *httptest.Server, w world) adapter.CaseResponse {
	t.Helper()

	body := fmt.Sprintf(`{"client_id":%q,"product_id":%q,"status_id":%q,"entry_date":"2025-03-10","actor_id":%q}`,
		w.ClientID, w.ProductID, w.StatusID, w.UserID)

	var caso adapter.CaseResponse
	mustPost(t, srv, "/api/v1/cases", body, &caso)
	return caso
}

// seedFlow configures a two-stage flow for the world's client and product,
// returning the flow and its stages.
func seedFlow(t *testing.T, srv *httptest.Server, w world) (adapter.StageFlowResponse, []adapter.StageResponse) {
	t.Helper()

	var flow adapter.StageFlowResponse
	body := fmt.Sprintf(`{"name":"Fluxo Regressos","client_id":%q,"product_id":%q}`, w.ClientID, w.ProductID)
	mustPost(t, srv, "/api/v1/flows", body, &flow)

	stages := make([]adapter.StageResponse, 2)
	mustPost(t, srv, "/api/v1/flows/"+flow.ID+"/stages", `{"name":"Analise","order":1,"sla_days":5}`, &stages[0])
	mustPost(t, srv, "/api/v1/flows/"+flow.ID+"/stages", `{"name":"Negociacao","order":2,"sla_days":10}`, &stages[1])

	return flow, stages
}

// --- Clients ---

func TestCreateClient(t *testing.T) {
	srv := newTestServer(t)

	var client adapter.ClientResponse
	mustPost(t, srv, "/api/v1/clients", `{"person_type":"PF","name":"Joao Silva","email":"joao@example.com"}`, &client)

	if client.ID == "" {
		t.Error("ID should not be empty")
	}
	if client.PersonType != "PF" {
		t.Errorf("PersonType = %q, want %q", client.PersonType, "PF")
	}
	if client.Name != "Joao Silva" {
		t.Errorf("Name = %q, want %q", client.Name, "Joao Silva")
	}
	if client.CreatedAt == "" {
		t.Error("CreatedAt should not be empty")
	}
}

func TestCreateClient_InvalidPersonType(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/clients", `{"person_type":"XX","name":"Joao"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestGetClient_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/clients/nonexistent", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestListClients_FilterByPersonType(t *testing.T) {
	srv := newTestServer(t)

	var created adapter.ClientResponse
	mustPost(t, srv, "/api/v1/clients", `{"person_type":"PF","name":"Joao"}`, &created)
	mustPost(t, srv, "/api/v1/clients", `{"person_type":"PJ","name":"Alfa SA"}`, &created)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/clients?person_type=PJ", "")

	var clients []adapter.ClientResponse
	decodeBody(t, resp, &clients)

	if len(clients) != 1 {
		t.Fatalf("got %d clients, want 1", len(clients))
	}
	if clients[0].Name != "Alfa SA" {
		t.Errorf("Name = %q, want %q", clients[0].Name, "Alfa SA")
	}
}

func TestUpdateClient(t *testing.T) {
	srv := newTestServer(t)

	var created adapter.ClientResponse
	mustPost(t, srv, "/api/v1/clients", `{"person_type":"PF","name":"Joao"}`, &created)

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/v1/clients/"+created.ID,
		`{"person_type":"PF","name":"Joao Souza","city":"Curitiba"}`)

	var updated adapter.ClientResponse
	decodeBody(t, resp, &updated)

	if updated.Name != "Joao Souza" {
		t.Errorf("Name = %q, want %q", updated.Name, "Joao Souza")
	}
	if updated.City != "Curitiba" {
		t.Errorf("City = %q, want %q", updated.City, "Curitiba")
	}
}

// --- Workflow configuration ---

func TestCreateFlow_DuplicatePair(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	seedFlow(t, srv, w)

	body := fmt.Sprintf(`{"name":"Outro","client_id":%q,"product_id":%q}`, w.ClientID, w.ProductID)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/flows", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestCreateStage_DuplicateOrder(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	flow, _ := seedFlow(t, srv, w)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/flows/"+flow.ID+"/stages", `{"name":"Extra","order":1}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestListStages_Ordered(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	flow, _ := seedFlow(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/flows/"+flow.ID+"/stages", "")

	var stages []adapter.StageResponse
	decodeBody(t, resp, &stages)

	if len(stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(stages))
	}
	if stages[0].Name != "Analise" || stages[1].Name != "Negociacao" {
		t.Errorf("stages out of order: %q, %q", stages[0].Name, stages[1].Name)
	}
}

func TestCreateTemplateAndOption(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	var template adapter.ActionTemplateResponse
	mustPost(t, srv, "/api/v1/stages/"+stages[0].ID+"/templates",
		`{"title":"Enviar proposta","deadline_days":5,"deadline_kind":"business"}`, &template)

	if template.Assignment != "creator" {
		t.Errorf("Assignment = %q, want %q", template.Assignment, "creator")
	}

	var option adapter.DecisionOptionResponse
	mustPost(t, srv, "/api/v1/templates/"+template.ID+"/options",
		`{"label":"Proposta aceita","advance_to_next_stage":true}`, &option)

	if !option.AdvanceToNextStage {
		t.Error("AdvanceToNextStage should be true")
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/templates/"+template.ID+"/options", "")

	var options []adapter.DecisionOptionResponse
	decodeBody(t, resp, &options)

	if len(options) != 1 {
		t.Errorf("got %d options, want 1", len(options))
	}
}

func TestCreateTemplate_StageNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/stages/nonexistent/templates", `{"title":"Tarefa"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

// --- Cases ---

func TestIntakeCase(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	caso := mustIntakeCase(t, srv, w)

	if caso.ID == "" {
		t.Error("ID should not be empty")
	}
	if caso.ClientID != w.ClientID {
		t.Errorf("ClientID = %q, want %q", caso.ClientID, w.ClientID)
	}
	if caso.EntryDate != "2025-03-10" {
		t.Errorf("EntryDate = %q, want %q", caso.EntryDate, "2025-03-10")
	}
	if caso.CurrentStageID != nil {
		t.Errorf("CurrentStageID = %v, want nil without a flow", *caso.CurrentStageID)
	}
	if caso.DriveFolderID == "" {
		t.Error("DriveFolderID should be set by the stub drive")
	}
}

func TestIntakeCase_EntersFirstStage(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	caso := mustIntakeCase(t, srv, w)

	if caso.CurrentStageID == nil {
		t.Fatal("CurrentStageID should be set when a flow exists")
	}
	if *caso.CurrentStageID != stages[0].ID {
		t.Errorf("CurrentStageID = %q, want %q", *caso.CurrentStageID, stages[0].ID)
	}
	if caso.StageEnteredAt == "" {
		t.Error("StageEnteredAt should not be empty")
	}
}

func TestIntakeCase_SpawnsStageActions(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	var template adapter.ActionTemplateResponse
	mustPost(t, srv, "/api/v1/stages/"+stages[0].ID+"/templates",
		`{"title":"Enviar proposta","deadline_days":5,"deadline_kind":"calendar"}`, &template)

	caso := mustIntakeCase(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/actions", "")

	var actions []adapter.ActionInstanceResponse
	decodeBody(t, resp, &actions)

	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	if actions[0].Status != "pending" {
		t.Errorf("Status = %q, want %q", actions[0].Status, "pending")
	}
	if actions[0].ResponsibleUserID != w.UserID {
		t.Errorf("ResponsibleUserID = %q, want %q", actions[0].ResponsibleUserID, w.UserID)
	}
	if actions[0].DueAt == "" {
		t.Error("DueAt should be set for a template with a deadline")
	}
}

func TestIntakeCase_UnknownClient(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	body := fmt.Sprintf(`{"client_id":"nonexistent","product_id":%q,"status_id":%q,"entry_date":"2025-03-10","actor_id":%q}`,
		w.ProductID, w.StatusID, w.UserID)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/cases", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestIntakeCase_BadDate(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)

	body := fmt.Sprintf(`{"client_id":%q,"product_id":%q,"status_id":%q,"entry_date":"10/03/2025","actor_id":%q}`,
		w.ClientID, w.ProductID, w.StatusID, w.UserID)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/cases", body)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestMoveCaseStage(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)
	caso := mustIntakeCase(t, srv, w)

	body := fmt.Sprintf(`{"stage_id":%q,"actor_id":%q}`, stages[1].ID, w.UserID)
	var moved adapter.CaseResponse
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/stage", body, &moved)

	if moved.CurrentStageID == nil || *moved.CurrentStageID != stages[1].ID {
		t.Errorf("CurrentStageID = %v, want %q", moved.CurrentStageID, stages[1].ID)
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/history", "")

	var history []adapter.StageHistoryResponse
	decodeBody(t, resp, &history)

	if len(history) != 2 {
		t.Fatalf("got %d history rows, want 2", len(history))
	}
	if history[0].LeftAt == "" {
		t.Error("first history row should be closed")
	}
	if history[1].LeftAt != "" {
		t.Error("second history row should still be open")
	}
}

func TestCompleteAction_AdvancesThroughOption(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	var template adapter.ActionTemplateResponse
	mustPost(t, srv, "/api/v1/stages/"+stages[0].ID+"/templates", `{"title":"Enviar proposta"}`, &template)

	var option adapter.DecisionOptionResponse
	mustPost(t, srv, "/api/v1/templates/"+template.ID+"/options",
		`{"label":"Aceita","advance_to_next_stage":true}`, &option)

	caso := mustIntakeCase(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/actions", "")
	var actions []adapter.ActionInstanceResponse
	decodeBody(t, resp, &actions)
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}

	body := fmt.Sprintf(`{"option_id":%q,"note":"cliente aceitou","actor_id":%q}`, option.ID, w.UserID)
	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/actions/"+actions[0].ID+"/complete", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID, "")
	var after adapter.CaseResponse
	decodeBody(t, resp, &after)

	if after.CurrentStageID == nil || *after.CurrentStageID != stages[1].ID {
		t.Errorf("CurrentStageID = %v, want %q", after.CurrentStageID, stages[1].ID)
	}
}

func TestCompleteAction_Twice(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	var template adapter.ActionTemplateResponse
	mustPost(t, srv, "/api/v1/stages/"+stages[0].ID+"/templates", `{"title":"Analisar"}`, &template)

	caso := mustIntakeCase(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/actions", "")
	var actions []adapter.ActionInstanceResponse
	decodeBody(t, resp, &actions)

	body := fmt.Sprintf(`{"actor_id":%q}`, w.UserID)
	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/actions/"+actions[0].ID+"/complete", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("first completion: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/actions/"+actions[0].ID+"/complete", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("second completion: status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestReopenAction(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	_, stages := seedFlow(t, srv, w)

	var template adapter.ActionTemplateResponse
	mustPost(t, srv, "/api/v1/stages/"+stages[0].ID+"/templates", `{"title":"Analisar"}`, &template)

	caso := mustIntakeCase(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/actions", "")
	var actions []adapter.ActionInstanceResponse
	decodeBody(t, resp, &actions)

	body := fmt.Sprintf(`{"actor_id":%q}`, w.UserID)
	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/actions/"+actions[0].ID+"/complete", body)
	resp.Body.Close()

	resp = doRequest(t, http.MethodPost, srv.URL+"/api/v1/actions/"+actions[0].ID+"/reopen", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reopen: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/actions", "")
	decodeBody(t, resp, &actions)

	if actions[0].Status != "pending" {
		t.Errorf("Status = %q, want %q", actions[0].Status, "pending")
	}
	if actions[0].CompletedAt != "" {
		t.Errorf("CompletedAt = %q, want empty", actions[0].CompletedAt)
	}
}

func TestKanban(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	flow, stages := seedFlow(t, srv, w)
	caso := mustIntakeCase(t, srv, w)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/flows/"+flow.ID+"/kanban", "")

	var columns []adapter.KanbanColumnResponse
	decodeBody(t, resp, &columns)

	if len(columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(columns))
	}
	if columns[0].Stage.ID != stages[0].ID {
		t.Errorf("first column stage = %q, want %q", columns[0].Stage.ID, stages[0].ID)
	}
	if len(columns[0].Cases) != 1 || columns[0].Cases[0].ID != caso.ID {
		t.Errorf("first column should hold case %q", caso.ID)
	}
	if len(columns[1].Cases) != 0 {
		t.Errorf("second column should be empty, got %d cases", len(columns[1].Cases))
	}
}

func TestCaseLog(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	caso := mustIntakeCase(t, srv, w)

	body := fmt.Sprintf(`{"date":"2025-03-11","description":"Contato com o cliente","author_id":%q}`, w.UserID)
	var entry adapter.CaseLogEntryResponse
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/log", body, &entry)

	if entry.Description != "Contato com o cliente" {
		t.Errorf("Description = %q, want %q", entry.Description, "Contato com o cliente")
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/log", "")

	var entries []adapter.CaseLogEntryResponse
	decodeBody(t, resp, &entries)

	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

// --- Timesheet ---

func TestTimesheet(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	caso := mustIntakeCase(t, srv, w)

	body := fmt.Sprintf(`{"worked_on":"2025-03-12","professional_id":%q,"minutes":90,"description":"Analise"}`, w.UserID)
	var entry adapter.TimesheetEntryResponse
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/timesheet", body, &entry)

	if entry.Duration != "01:30" {
		t.Errorf("Duration = %q, want %q", entry.Duration, "01:30")
	}

	body = fmt.Sprintf(`{"worked_on":"2025-03-13","professional_id":%q,"minutes":45}`, w.UserID)
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/timesheet", body, &entry)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/timesheet", "")

	var list struct {
		Entries []adapter.TimesheetEntryResponse `json:"entries"`
		Total   string                           `json:"total"`
	}
	decodeBody(t, resp, &list)

	if len(list.Entries) != 2 {
		t.Errorf("got %d entries, want 2", len(list.Entries))
	}
	if list.Total != "02:15" {
		t.Errorf("Total = %q, want %q", list.Total, "02:15")
	}
}

// --- Finance ---

func TestAgreementLifecycle(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	caso := mustIntakeCase(t, srv, w)

	body := `{"agreed_on":"2025-03-15","installments":3,"installment_cents":50000,"first_due_date":"2025-04-01"}`
	var agreement adapter.AgreementResponse
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/agreements", body, &agreement)

	if agreement.TotalCents != 150000 {
		t.Errorf("TotalCents = %d, want %d", agreement.TotalCents, 150000)
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/agreements/"+agreement.ID+"/installments", "")

	var installments []adapter.InstallmentResponse
	decodeBody(t, resp, &installments)

	if len(installments) != 3 {
		t.Fatalf("got %d installments, want 3", len(installments))
	}
	if installments[1].DueDate != "2025-05-01" {
		t.Errorf("second due date = %q, want %q", installments[1].DueDate, "2025-05-01")
	}

	settleBody := fmt.Sprintf(`{"actor_id":%q}`, w.UserID)
	var settled adapter.InstallmentResponse
	mustPost(t, srv, "/api/v1/installments/"+installments[0].ID+"/settle", settleBody, &settled)

	if settled.Status != "settled" {
		t.Errorf("Status = %q, want %q", settled.Status, "settled")
	}
	if settled.SettledOn == "" {
		t.Error("SettledOn should be set")
	}
}

func TestAddExpense(t *testing.T) {
	srv := newTestServer(t)
	w := seedWorld(t, srv)
	caso := mustIntakeCase(t, srv, w)

	var expense adapter.ExpenseResponse
	mustPost(t, srv, "/api/v1/cases/"+caso.ID+"/expenses",
		`{"spent_on":"2025-03-20","description":"Custas judiciais","cents":12000}`, &expense)

	if expense.Cents != 12000 {
		t.Errorf("Cents = %d, want %d", expense.Cents, 12000)
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/cases/"+caso.ID+"/expenses", "")

	var expenses []adapter.ExpenseResponse
	decodeBody(t, resp, &expenses)

	if len(expenses) != 1 {
		t.Errorf("got %d expenses, want 1", len(expenses))
	}
}

// --- Notifications admin ---

func TestEmailSettingsActivation(t *testing.T) {
	srv := newTestServer(t)

	var first, second adapter.EmailSettingsResponse
	mustPost(t, srv, "/api/v1/email-settings",
		`{"host":"smtp.example.com","port":587,"from":"aviso@example.com"}`, &first)
	mustPost(t, srv, "/api/v1/email-settings",
		`{"host":"smtp2.example.com","port":465,"from":"aviso@example.com","use_tls":true}`, &second)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/email-settings/"+second.ID+"/activate", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("activate: status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestActivateEmailSettings_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/email-settings/nonexistent/activate", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestCreateEventAndTemplate(t *testing.T) {
	srv := newTestServer(t)

	var event adapter.EventResponse
	mustPost(t, srv, "/api/v1/events",
		`{"name":"Novo caso","slug":"novo-caso-criado","description":"Disparado na abertura"}`, &event)

	if !event.Active {
		t.Error("new events should be active")
	}

	body := fmt.Sprintf(`{"event_id":%q,"subject":"Novo caso: {{.case_title}}","body":"Caso {{.case_id}} criado.","fixed_recipients":["gestor@example.com"]}`, event.ID)
	var template adapter.EmailTemplateResponse
	mustPost(t, srv, "/api/v1/email-templates", body, &template)

	if !template.Active {
		t.Error("new templates should be active")
	}
}
