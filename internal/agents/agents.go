// Package agents defines the four reasoning stages of the solving
// pipeline and their LLM-backed implementations. Each stage is a pure
// request/response capability with no persistent state.
package agents

import "context"

// ParsedProblem is the structured output of the parse stage.
type ParsedProblem struct {
	ProblemText         string `json:"problem_text"`
	Topic               string `json:"topic"`
	NeedsClarification  bool   `json:"needs_clarification,omitempty"`
	ClarificationReason string `json:"clarification_reason,omitempty"`
}

// Passage is a retrieved knowledge snippet handed to the solver.
type Passage struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Solution is the output of the solve stage.
type Solution struct {
	Text             string    `json:"llm_solution"`
	RetrievedContext []Passage `json:"retrieved_context,omitempty"`
	SymbolicResult   string    `json:"symbolic_result,omitempty"`
}

// Verification is the structured output of the verify stage.
type Verification struct {
	IsCorrect  bool     `json:"is_correct"`
	Confidence float64  `json:"confidence"`
	Issues     []string `json:"issues"`
}

// Parser turns raw problem text into a structured problem.
type Parser interface {
	Parse(ctx context.Context, raw string) (*ParsedProblem, error)
}

// Solver produces a solution for a parsed problem, optionally informed
// by retrieved knowledge passages.
type Solver interface {
	Solve(ctx context.Context, problem *ParsedProblem, retrieved []Passage) (*Solution, error)
}

// Verifier checks a proposed solution against the original problem text.
type Verifier interface {
	Verify(ctx context.Context, problemText, solutionText string) (*Verification, error)
}

// Explainer produces a student-facing explanation of a solution.
type Explainer interface {
	Explain(ctx context.Context, problemText, solutionText string) (string, error)
}
