package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathmentor/mentor/internal/llm"
)

// LLMSolver implements Solver using an LLM provider in JSON mode.
type LLMSolver struct {
	provider llm.Provider
	model    string
}

// NewSolver creates a new LLM-backed solver.
func NewSolver(provider llm.Provider, model string) *LLMSolver {
	return &LLMSolver{provider: provider, model: model}
}

func (s *LLMSolver) Solve(ctx context.Context, problem *ParsedProblem, retrieved []Passage) (*Solution, error) {
	if problem == nil || strings.TrimSpace(problem.ProblemText) == "" {
		return nil, NewSolveError(fmt.Errorf("no parsed problem to solve"))
	}

	prompt := fmt.Sprintf(solverPromptTemplate, problem.Topic, problem.ProblemText, formatReferences(retrieved))

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.model,
		System:      solverSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   4096,
		Temperature: 0.2,
		JSONMode:    true,
	})
	if err != nil {
		return nil, NewSolveError(fmt.Errorf("llm completion: %w", err))
	}

	var out struct {
		Solution       string `json:"solution"`
		SymbolicResult string `json:"symbolic_result"`
	}
	if err := decodeJSON(resp.Content, &out); err != nil {
		// Some models answer in prose despite the JSON instruction;
		// accept the raw text as the solution instead of failing.
		out.Solution = strings.TrimSpace(resp.Content)
	}

	if strings.TrimSpace(out.Solution) == "" {
		return nil, NewSolveError(fmt.Errorf("model produced no solution"))
	}

	return &Solution{
		Text:             out.Solution,
		RetrievedContext: retrieved,
		SymbolicResult:   out.SymbolicResult,
	}, nil
}

// formatReferences renders retrieved passages as a reference block for
// the solver prompt. Returns an empty string when nothing was retrieved.
func formatReferences(retrieved []Passage) string {
	if len(retrieved) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nReference material:\n")
	for i, p := range retrieved {
		fmt.Fprintf(&b, "\n[%d] (relevance %.2f)\n%s\n", i+1, p.Score, p.Content)
	}
	return b.String()
}
