package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathmentor/mentor/internal/llm"
)

// LLMExplainer implements Explainer using an LLM provider.
type LLMExplainer struct {
	provider llm.Provider
	model    string
}

// NewExplainer creates a new LLM-backed explainer.
func NewExplainer(provider llm.Provider, model string) *LLMExplainer {
	return &LLMExplainer{provider: provider, model: model}
}

func (e *LLMExplainer) Explain(ctx context.Context, problemText, solutionText string) (string, error) {
	if strings.TrimSpace(problemText) == "" || strings.TrimSpace(solutionText) == "" {
		return "", NewExplainError(fmt.Errorf("problem and solution text are both required"))
	}

	prompt := fmt.Sprintf(explainerPromptTemplate, problemText, solutionText)

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model:       e.model,
		System:      explainerSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   2048,
		Temperature: 0.4,
	})
	if err != nil {
		return "", NewExplainError(fmt.Errorf("llm completion: %w", err))
	}

	explanation := strings.TrimSpace(resp.Content)
	if explanation == "" {
		return "", NewExplainError(fmt.Errorf("model produced no explanation"))
	}

	return explanation, nil
}
