package casebank

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func setupRouter(t *testing.T) (*Store, *chi.Mux) {
	t.Helper()
	store := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)
	return store, r
}

func TestListCasesEndpoint(t *testing.T) {
	store, router := setupRouter(t)
	store.Append(record("solve x squared"))
	store.Append(record("integrate cosine"))

	req := httptest.NewRequest(http.MethodGet, "/api/cases?limit=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var records []CaseRecord
	if err := json.NewDecoder(w.Body).Decode(&records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].ParsedProblem.ProblemText != "integrate cosine" {
		t.Errorf("limit should keep the most recent record, got %q", records[0].ParsedProblem.ProblemText)
	}
}

func TestSimilarEndpoint(t *testing.T) {
	store, router := setupRouter(t)
	store.Append(record("solve x squared minus 4x plus 4"))
	store.Append(record("completely unrelated geometry words"))

	req := httptest.NewRequest(http.MethodGet, "/api/cases/similar?q=solve+x+squared+minus+4x+plus+4", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var results []similarResult
	if err := json.NewDecoder(w.Body).Decode(&results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != 1.0 {
		t.Errorf("score = %f, want 1.0", results[0].Score)
	}
}

func TestSimilarEndpointRequiresQuery(t *testing.T) {
	_, router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/similar", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	store, router := setupRouter(t)
	store.Append(record("p"))

	req := httptest.NewRequest(http.MethodPost, "/api/cases/reset", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if store.Len() != 0 {
		t.Errorf("store size after reset = %d, want 0", store.Len())
	}
}
