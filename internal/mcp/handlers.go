package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mathmentor/mentor/internal/casebank"
)

// handleSolveProblem runs the full pipeline for one problem.
func (s *Server) handleSolveProblem(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	problem, err := request.RequireString("problem")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: problem"), nil
	}

	trace, err := s.orch.Run(ctx, problem, casebank.InputText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("solving failed: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Trace: %s\n", trace.ID)
	fmt.Fprintf(&b, "Topic: %s\n\n", trace.Parsed.Topic)
	fmt.Fprintf(&b, "## Solution\n\n%s\n\n", trace.Solution.Text)
	if trace.Solution.SymbolicResult != "" {
		fmt.Fprintf(&b, "Result: %s\n\n", trace.Solution.SymbolicResult)
	}
	fmt.Fprintf(&b, "## Verification\n\ncorrect: %t (confidence %.2f)\n", trace.Verification.IsCorrect, trace.Verification.Confidence)
	for _, issue := range trace.Verification.Issues {
		fmt.Fprintf(&b, "- %s\n", issue)
	}
	fmt.Fprintf(&b, "\n## Explanation\n\n%s\n", trace.Explanation)
	b.WriteString("\nUse record_feedback with the trace id above to save this case.")

	return mcp.NewToolResultText(b.String()), nil
}

// handleRecordFeedback finalizes a pending trace into case memory.
func (s *Server) handleRecordFeedback(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	traceID, err := request.RequireString("trace_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: trace_id"), nil
	}
	verdict, err := request.RequireString("feedback")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: feedback"), nil
	}

	fb := casebank.Feedback(verdict)
	if fb != casebank.FeedbackCorrect && fb != casebank.FeedbackIncorrect {
		return mcp.NewToolResultError(fmt.Sprintf("invalid feedback %q", verdict)), nil
	}

	id, err := s.orch.Feedback(traceID, fb, request.GetString("comment", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recording failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Recorded case %s.", id)), nil
}

// handleDiscardTrace drops a pending trace without recording it.
func (s *Server) handleDiscardTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	traceID, err := request.RequireString("trace_id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: trace_id"), nil
	}

	if !s.orch.Discard(traceID) {
		return mcp.NewToolResultError(fmt.Sprintf("no pending trace %q", traceID)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Discarded trace %s without saving it.", traceID)), nil
}

// handleFindSimilarCases searches case memory by text similarity.
func (s *Server) handleFindSimilarCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 3)
	if limit <= 0 {
		limit = 3
	}

	matches := s.bank.FindSimilar(query, limit)
	if len(matches) == 0 {
		return mcp.NewToolResultText("No similar cases found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d similar case(s):\n\n", len(matches))
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. [%.2f] %s\n", i+1, m.Score, m.Record.ParsedProblem.ProblemText)
		fmt.Fprintf(&b, "   solution: %s\n", firstLine(m.Record.Solution))
		fmt.Fprintf(&b, "   feedback: %s\n\n", m.Record.Feedback)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleListCases lists recent cases, newest last.
func (s *Server) handleListCases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	records := s.bank.All()
	if len(records) == 0 {
		return mcp.NewToolResultText("Case memory is empty."), nil
	}
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s [%s] %s (%s)\n",
			rec.Timestamp.Format("2006-01-02 15:04"),
			rec.Feedback,
			rec.ParsedProblem.ProblemText,
			rec.ParsedProblem.Topic,
		)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// handleResetCaseMemory deletes all stored cases.
func (s *Server) handleResetCaseMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := s.bank.Len()
	if err := s.bank.Reset(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d case(s).", n)), nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
