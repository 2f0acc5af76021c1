package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/mathmentor/mentor/internal/llm"
)

// cannedProvider returns a fixed response for every completion.
type cannedProvider struct {
	content string
	err     error
	last    llm.CompletionRequest
}

func (c *cannedProvider) Name() string { return "canned" }

func (c *cannedProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return &llm.CompletionResponse{Content: c.content, InputTokens: 5, OutputTokens: 7}, nil
}

func TestParserRejectsEmptyInput(t *testing.T) {
	parser := NewParser(&cannedProvider{}, "m")

	_, err := parser.Parse(context.Background(), "   ")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if stage, ok := FailedStage(err); !ok || stage != StageParse {
		t.Errorf("expected parse stage error, got %v", err)
	}
}

func TestParserParsesJSONResponse(t *testing.T) {
	prov := &cannedProvider{content: `{"problem_text":"solve x^2 - 4 = 0","topic":"algebra"}`}
	parser := NewParser(prov, "m")

	got, err := parser.Parse(context.Background(), "solve x squared minus four equals zero")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.ProblemText != "solve x^2 - 4 = 0" {
		t.Errorf("ProblemText = %q", got.ProblemText)
	}
	if got.Topic != "algebra" {
		t.Errorf("Topic = %q", got.Topic)
	}
	if !prov.last.JSONMode {
		t.Error("parser should request JSON mode")
	}
}

func TestParserHandlesFencedJSON(t *testing.T) {
	prov := &cannedProvider{content: "```json\n{\"problem_text\":\"p\",\"topic\":\"calculus\"}\n```"}
	parser := NewParser(prov, "m")

	got, err := parser.Parse(context.Background(), "integrate x")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Topic != "calculus" {
		t.Errorf("Topic = %q", got.Topic)
	}
}

func TestParserDefaultsMissingFields(t *testing.T) {
	prov := &cannedProvider{content: `{}`}
	parser := NewParser(prov, "m")

	got, err := parser.Parse(context.Background(), "what is 2+2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.ProblemText != "what is 2+2" {
		t.Errorf("expected raw input fallback, got %q", got.ProblemText)
	}
	if got.Topic != "other" {
		t.Errorf("expected topic fallback, got %q", got.Topic)
	}
}

func TestSolverRequiresParsedProblem(t *testing.T) {
	solver := NewSolver(&cannedProvider{}, "m")

	_, err := solver.Solve(context.Background(), nil, nil)
	if stage, ok := FailedStage(err); !ok || stage != StageSolve {
		t.Errorf("expected solve stage error, got %v", err)
	}
}

func TestSolverReturnsSolution(t *testing.T) {
	prov := &cannedProvider{content: `{"solution":"x = 2 or x = -2","symbolic_result":"x = ±2"}`}
	solver := NewSolver(prov, "m")

	retrieved := []Passage{{Content: "difference of squares", Score: 0.9}}
	got, err := solver.Solve(context.Background(), &ParsedProblem{ProblemText: "solve x^2 - 4 = 0", Topic: "algebra"}, retrieved)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got.Text != "x = 2 or x = -2" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.SymbolicResult != "x = ±2" {
		t.Errorf("SymbolicResult = %q", got.SymbolicResult)
	}
	if len(got.RetrievedContext) != 1 {
		t.Errorf("RetrievedContext length = %d", len(got.RetrievedContext))
	}
}

func TestSolverAcceptsProseResponse(t *testing.T) {
	prov := &cannedProvider{content: "The answer is x = 2."}
	solver := NewSolver(prov, "m")

	got, err := solver.Solve(context.Background(), &ParsedProblem{ProblemText: "p", Topic: "algebra"}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got.Text != "The answer is x = 2." {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestSolverFailsOnProviderError(t *testing.T) {
	prov := &cannedProvider{err: errors.New("boom")}
	solver := NewSolver(prov, "m")

	_, err := solver.Solve(context.Background(), &ParsedProblem{ProblemText: "p"}, nil)
	if stage, ok := FailedStage(err); !ok || stage != StageSolve {
		t.Errorf("expected solve stage error, got %v", err)
	}
}

func TestVerifierRejectsEmptySolution(t *testing.T) {
	verifier := NewVerifier(&cannedProvider{}, "m")

	_, err := verifier.Verify(context.Background(), "problem", "")
	if stage, ok := FailedStage(err); !ok || stage != StageVerify {
		t.Errorf("expected verify stage error, got %v", err)
	}
}

func TestVerifierClampsConfidence(t *testing.T) {
	prov := &cannedProvider{content: `{"is_correct":true,"confidence":1.7,"issues":null}`}
	verifier := NewVerifier(prov, "m")

	got, err := verifier.Verify(context.Background(), "p", "s")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want clamped 1.0", got.Confidence)
	}
	if got.Issues == nil {
		t.Error("Issues should never be nil")
	}
}

func TestVerifierReportsIssues(t *testing.T) {
	prov := &cannedProvider{content: `{"is_correct":false,"confidence":0.8,"issues":["sign error in step 2"]}`}
	verifier := NewVerifier(prov, "m")

	got, err := verifier.Verify(context.Background(), "p", "s")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.IsCorrect {
		t.Error("expected IsCorrect=false")
	}
	if len(got.Issues) != 1 || got.Issues[0] != "sign error in step 2" {
		t.Errorf("Issues = %v", got.Issues)
	}
}

func TestExplainerRequiresPrerequisites(t *testing.T) {
	explainer := NewExplainer(&cannedProvider{}, "m")

	_, err := explainer.Explain(context.Background(), "", "solution")
	if stage, ok := FailedStage(err); !ok || stage != StageExplain {
		t.Errorf("expected explain stage error, got %v", err)
	}
}

func TestExplainerReturnsText(t *testing.T) {
	prov := &cannedProvider{content: "We factor the quadratic..."}
	explainer := NewExplainer(prov, "m")

	got, err := explainer.Explain(context.Background(), "p", "s")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got != "We factor the quadratic..." {
		t.Errorf("explanation = %q", got)
	}
}

func TestFailedStageOnPlainError(t *testing.T) {
	if _, ok := FailedStage(errors.New("plain")); ok {
		t.Error("plain error should not carry a stage")
	}
}
