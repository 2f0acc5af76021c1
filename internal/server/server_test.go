package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/mathmentor/mentor/internal/agents"
	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/pipeline"
)

type fixedStages struct{}

func (fixedStages) Parse(_ context.Context, raw string) (*agents.ParsedProblem, error) {
	return &agents.ParsedProblem{ProblemText: raw, Topic: "algebra"}, nil
}

func (fixedStages) Solve(_ context.Context, _ *agents.ParsedProblem, _ []agents.Passage) (*agents.Solution, error) {
	return &agents.Solution{Text: "x = 2"}, nil
}

func (fixedStages) Verify(_ context.Context, _, _ string) (*agents.Verification, error) {
	return &agents.Verification{IsCorrect: true, Confidence: 0.9, Issues: []string{}}, nil
}

func (fixedStages) Explain(_ context.Context, _, _ string) (string, error) {
	return "## Steps\n\nfirst, isolate x", nil
}

func setupServer(t *testing.T) (*Server, *casebank.Store) {
	t.Helper()
	bank, err := casebank.Open(filepath.Join(t.TempDir(), "cases.json"))
	if err != nil {
		t.Fatalf("casebank.Open: %v", err)
	}
	orch := pipeline.New(pipeline.Options{
		Parser:    fixedStages{},
		Solver:    fixedStages{},
		Verifier:  fixedStages{},
		Explainer: fixedStages{},
		Bank:      bank,
	})
	return New(Config{Port: 0}, orch, bank, nil), bank
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSolveEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	w := postJSON(t, s, "/api/solve", solveRequest{Input: "solve x + 1 = 3"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp solveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Trace.State != pipeline.StateAwaitingFeedback {
		t.Errorf("State = %q", resp.Trace.State)
	}
	if resp.Trace.Solution == nil || resp.Trace.Solution.Text != "x = 2" {
		t.Errorf("Solution = %+v", resp.Trace.Solution)
	}
	if !strings.Contains(resp.ExplanationHTML, "<h2") {
		t.Errorf("explanation not rendered: %q", resp.ExplanationHTML)
	}
}

func TestSolveEmptyInput(t *testing.T) {
	s, _ := setupServer(t)

	w := postJSON(t, s, "/api/solve", solveRequest{Input: ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSolveInvalidInputType(t *testing.T) {
	s, _ := setupServer(t)

	w := postJSON(t, s, "/api/solve", solveRequest{Input: "2+2", InputType: "video"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	s, bank := setupServer(t)

	w := postJSON(t, s, "/api/solve", solveRequest{Input: "solve x + 1 = 3"})
	var solved solveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &solved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = postJSON(t, s, "/api/feedback", feedbackRequest{
		TraceID:  solved.Trace.ID,
		Feedback: "correct",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if bank.Len() != 1 {
		t.Errorf("bank has %d records", bank.Len())
	}

	// Same trace again: already consumed.
	w = postJSON(t, s, "/api/feedback", feedbackRequest{
		TraceID:  solved.Trace.ID,
		Feedback: "correct",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestFeedbackInvalidVerdict(t *testing.T) {
	s, _ := setupServer(t)

	w := postJSON(t, s, "/api/feedback", feedbackRequest{TraceID: "x", Feedback: "maybe"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDiscardEndpoint(t *testing.T) {
	s, bank := setupServer(t)

	w := postJSON(t, s, "/api/solve", solveRequest{Input: "solve x + 1 = 3"})
	var resp solveResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	w = postJSON(t, s, "/api/discard", discardRequest{TraceID: resp.Trace.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if bank.Len() != 0 {
		t.Error("discarded trace was recorded")
	}

	w = postJSON(t, s, "/api/feedback", feedbackRequest{TraceID: resp.Trace.ID, Feedback: "correct"})
	if w.Code != http.StatusNotFound {
		t.Errorf("feedback after discard: expected 404, got %d", w.Code)
	}
}

func TestDiscardUnknownTrace(t *testing.T) {
	s, _ := setupServer(t)

	w := postJSON(t, s, "/api/discard", discardRequest{TraceID: "nope"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = postJSON(t, s, "/api/discard", discardRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing trace_id, got %d", w.Code)
	}
}

func TestStatsWithoutMeter(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCasesRoutesRegistered(t *testing.T) {
	s, _ := setupServer(t)

	req := httptest.NewRequest("GET", "/api/cases", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestSolveSocketStreamsProgress(t *testing.T) {
	s, _ := setupServer(t)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/solve"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(solveRequest{Input: "solve x + 1 = 3"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var sawProgress bool
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		switch msg.Type {
		case "progress":
			sawProgress = true
		case "result":
			if msg.Result.Trace.State != pipeline.StateAwaitingFeedback {
				t.Errorf("State = %q", msg.Result.Trace.State)
			}
			if !sawProgress {
				t.Error("no progress events before result")
			}
			return
		case "error":
			t.Fatalf("unexpected error message: %s", msg.Error)
		}
	}
}

func TestSolveSocketEmptyInput(t *testing.T) {
	s, _ := setupServer(t)

	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/solve"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(solveRequest{Input: ""}); err != nil {
		t.Fatalf("write: %v", err)
	}

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" {
		t.Errorf("expected error message, got %q", msg.Type)
	}
}
