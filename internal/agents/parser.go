package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/mathmentor/mentor/internal/llm"
)

// LLMParser implements Parser using an LLM provider in JSON mode.
type LLMParser struct {
	provider llm.Provider
	model    string
}

// NewParser creates a new LLM-backed parser.
func NewParser(provider llm.Provider, model string) *LLMParser {
	return &LLMParser{provider: provider, model: model}
}

func (p *LLMParser) Parse(ctx context.Context, raw string) (*ParsedProblem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, NewParseError(fmt.Errorf("empty problem statement"))
	}

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Model:       p.model,
		System:      parserSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(parserPromptTemplate, raw)}},
		MaxTokens:   1024,
		Temperature: 0.0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, NewParseError(fmt.Errorf("llm completion: %w", err))
	}

	var out struct {
		ProblemText         string `json:"problem_text"`
		Topic               string `json:"topic"`
		NeedsClarification  bool   `json:"needs_clarification"`
		ClarificationReason string `json:"clarification_reason"`
	}
	if err := decodeJSON(resp.Content, &out); err != nil {
		return nil, NewParseError(err)
	}

	if strings.TrimSpace(out.ProblemText) == "" {
		// The model could not extract a problem; fall back to the raw
		// statement rather than persisting an empty one downstream.
		out.ProblemText = raw
	}
	if out.Topic == "" {
		out.Topic = "other"
	}

	return &ParsedProblem{
		ProblemText:         out.ProblemText,
		Topic:               out.Topic,
		NeedsClarification:  out.NeedsClarification,
		ClarificationReason: out.ClarificationReason,
	}, nil
}
