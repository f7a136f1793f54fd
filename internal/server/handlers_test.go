package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/skriv/kontrakt/internal/config"
	"github.com/skriv/kontrakt/internal/keyword"
	"github.com/skriv/kontrakt/internal/models"
	"github.com/skriv/kontrakt/internal/oracle"
	"github.com/skriv/kontrakt/internal/pipeline"
	"github.com/skriv/kontrakt/internal/risk"
	"github.com/skriv/kontrakt/internal/storage"
)

// extractionResponse carries every section so the same reply satisfies any
// extraction request.
const extractionResponse = `{
	"contractState": {"number": "77-2025", "date": "2025-02-10", "subject": "оказание услуг"},
	"keyProvisions": [
		{"id": "kp1", "title": "Оплата услуг", "content": "Заказчик оплачивает услуги в течение 10 дней.", "category": "оплата", "sourceRefs": [{"paragraphIds": ["p1"]}]}
	],
	"paymentObligations": [],
	"possibleStates": []
}`

const riskResponse = `{
	"level": "high",
	"score": 72,
	"risks": [{"type": "financial", "description": "штраф", "severity": "high", "probability": 60}],
	"recommendations": ["пересмотреть условия"]
}`

func newTestServer(t *testing.T, responses ...string) *Server {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewFileStorage(filepath.Join(dir, "contracts"))
	if err != nil {
		t.Fatalf("NewFileStorage: %v", err)
	}
	clauses, err := keyword.NewBleveIndex(filepath.Join(dir, "bleve"))
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = clauses.Close() })

	if len(responses) == 0 {
		responses = []string{extractionResponse}
	}
	orc := oracle.NewMockOracle(responses...)
	parser := pipeline.NewParser(orc)
	analyzer := risk.NewAnalyzer(oracle.NewMockOracle(riskResponse), nil)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "contracts.db")
	cfg.Storage.ContractsDir = filepath.Join(dir, "contracts")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")

	return NewServer(parser, analyzer, store, clauses, cfg, zap.NewNop())
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	return w
}

func TestHandleParseContract(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/contracts", parseRequest{
		Text: "1.1. Заказчик оплачивает услуги в течение 10 дней.",
		Name: "dogovor.txt",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var rec storage.ContractRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Error("record should have an ID")
	}
	if rec.Document == nil || rec.Document.ContractState.Number != "77-2025" {
		t.Errorf("document not extracted: %+v", rec.Document)
	}

	// stored and retrievable
	got, err := srv.storage.GetContract(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetContract: %v", err)
	}
	if got.Name != "dogovor.txt" {
		t.Errorf("Name = %q", got.Name)
	}

	// clauses searchable
	hits, err := srv.clauses.Search(context.Background(), "оплачивает", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) == 0 {
		t.Error("expected indexed clause to be searchable")
	}
}

func TestHandleParseContract_emptyText(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/contracts", parseRequest{Text: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetContract_notFound(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/contracts/missing", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandleDeleteContract(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/contracts", parseRequest{Text: "1.1. Оплата в течение 10 дней."})
	if w.Code != http.StatusCreated {
		t.Fatalf("parse status = %d", w.Code)
	}
	var rec storage.ContractRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/contracts/"+rec.ID, nil)
	w2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(w2, r)
	if w2.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w2.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/contracts/"+rec.ID, nil)
	w3 := httptest.NewRecorder()
	srv.Router().ServeHTTP(w3, r)
	if w3.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w3.Code)
	}
}

func TestHandleListContracts(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 2; i++ {
		w := postJSON(t, srv, "/api/v1/contracts", parseRequest{Text: "1.1. Оплата в течение 10 дней."})
		if w.Code != http.StatusCreated {
			t.Fatalf("parse status = %d", w.Code)
		}
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Contracts []*storage.ContractSummary `json:"contracts"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Contracts) != 2 {
		t.Errorf("contracts = %d, want 2", len(out.Contracts))
	}
}

func TestHandleAnalyzeRisk_clauseText(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/risk", riskRequest{
		ClauseText: "Неустойка 5% за каждый день просрочки.",
		Category:   "ответственность",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var analysis models.RiskAnalysis
	if err := json.NewDecoder(w.Body).Decode(&analysis); err != nil {
		t.Fatal(err)
	}
	if analysis.Level != models.RiskHigh {
		t.Errorf("Level = %q, want high", analysis.Level)
	}
}

func TestHandleAnalyzeRisk_storedProvision(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/contracts", parseRequest{Text: "1.1. Оплата в течение 10 дней."})
	if w.Code != http.StatusCreated {
		t.Fatalf("parse status = %d", w.Code)
	}
	var rec storage.ContractRecord
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}

	w2 := postJSON(t, srv, "/api/v1/risk", riskRequest{ContractID: rec.ID, ProvisionID: "kp1"})
	if w2.Code != http.StatusOK {
		t.Fatalf("risk status = %d, body %s", w2.Code, w2.Body.String())
	}

	w3 := postJSON(t, srv, "/api/v1/risk", riskRequest{ContractID: rec.ID, ProvisionID: "nope"})
	if w3.Code != http.StatusNotFound {
		t.Errorf("unknown provision status = %d, want 404", w3.Code)
	}
}

func TestHandleAnalyzeRisk_missingInput(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/api/v1/risk", riskRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleSearchClauses_requiresQuery(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/clauses/search", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if _, ok := out["contracts"]; !ok {
		t.Error("status should report contract count")
	}
	if _, ok := out["config"]; !ok {
		t.Error("status should report config info")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}
