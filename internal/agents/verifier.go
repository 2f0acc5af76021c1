package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathmentor/mentor/internal/llm"
)

// LLMVerifier implements Verifier using an LLM provider in JSON mode.
type LLMVerifier struct {
	provider llm.Provider
	model    string
}

// NewVerifier creates a new LLM-backed verifier.
func NewVerifier(provider llm.Provider, model string) *LLMVerifier {
	return &LLMVerifier{provider: provider, model: model}
}

func (v *LLMVerifier) Verify(ctx context.Context, problemText, solutionText string) (*Verification, error) {
	if strings.TrimSpace(solutionText) == "" {
		return nil, NewVerifyError(fmt.Errorf("no solution text to verify"))
	}

	prompt := fmt.Sprintf(verifierPromptTemplate, problemText, solutionText)

	resp, err := v.provider.Complete(ctx, llm.CompletionRequest{
		Model:       v.model,
		System:      verifierSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens:   1024,
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, NewVerifyError(fmt.Errorf("llm completion: %w", err))
	}

	var out Verification
	if err := decodeJSON(resp.Content, &out); err != nil {
		return nil, NewVerifyError(err)
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	if out.Issues == nil {
		out.Issues = []string{}
	}

	return &out, nil
}
