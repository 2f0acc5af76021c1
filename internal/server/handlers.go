package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"

	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/pipeline"
	"github.com/mathmentor/mentor/internal/usage"
)

// markdown renders LLM explanations for browser clients.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

type solveRequest struct {
	Input     string `json:"input"`
	InputType string `json:"input_type,omitempty"`
}

type solveResponse struct {
	Trace           *pipeline.Trace `json:"trace"`
	ExplanationHTML string          `json:"explanation_html,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}
	inputType, err := parseInputType(req.InputType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trace, err := s.orch.Run(r.Context(), req.Input, inputType)
	if err != nil {
		// The partial trace still tells the client where it failed.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{
			"error": err.Error(),
			"trace": trace,
		})
		return
	}

	writeJSON(w, solveResponse{
		Trace:           trace,
		ExplanationHTML: renderMarkdown(trace.Explanation),
	})
}

type feedbackRequest struct {
	TraceID  string `json:"trace_id"`
	Feedback string `json:"feedback"`
	Comment  string `json:"comment,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TraceID == "" {
		writeError(w, http.StatusBadRequest, "trace_id is required")
		return
	}

	fb := casebank.Feedback(req.Feedback)
	switch fb {
	case casebank.FeedbackCorrect, casebank.FeedbackIncorrect, casebank.FeedbackNone:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid feedback %q", req.Feedback))
		return
	}

	id, err := s.orch.Feedback(req.TraceID, fb, req.Comment)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, map[string]string{"case_id": id})
}

type discardRequest struct {
	TraceID string `json:"trace_id"`
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var req discardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TraceID == "" {
		writeError(w, http.StatusBadRequest, "trace_id is required")
		return
	}
	if !s.orch.Discard(req.TraceID) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no pending trace %q", req.TraceID))
		return
	}
	writeJSON(w, map[string]string{"trace_id": req.TraceID, "status": "discarded"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.meter == nil {
		writeJSON(w, &usage.Stats{})
		return
	}
	stats, err := s.meter.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, stats)
}

func parseInputType(s string) (casebank.InputType, error) {
	if s == "" {
		return casebank.InputText, nil
	}
	it := casebank.InputType(s)
	switch it {
	case casebank.InputText, casebank.InputImage, casebank.InputAudio:
		return it, nil
	}
	return "", fmt.Errorf("invalid input type %q", s)
}

func renderMarkdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return buf.String()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
