// Package casebank persists every human-judged interaction as an
// append-only, similarity-searchable sequence of case records backed by
// a single JSON file.
package casebank

import (
	"time"

	"github.com/mathmentor/mentor/internal/agents"
)

// InputType identifies how a problem entered the system.
type InputType string

const (
	InputText  InputType = "text"
	InputImage InputType = "image"
	InputAudio InputType = "audio"
)

// Feedback is the human correctness judgment attached to a record.
type Feedback string

const (
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
	FeedbackNone      Feedback = "none"
)

// CaseRecord is one finalized interaction. Records are immutable after
// creation; a repeated judgment of the same trace yields a new record.
type CaseRecord struct {
	ID            string               `json:"id"`
	Timestamp     time.Time            `json:"timestamp"`
	OriginalInput string               `json:"original_input"`
	InputType     InputType            `json:"input_type"`
	ParsedProblem agents.ParsedProblem `json:"parsed_problem"`
	Solution      string               `json:"solution"`
	Verification  agents.Verification  `json:"verification"`
	Feedback      Feedback             `json:"feedback"`
	UserComment   string               `json:"user_comment,omitempty"`
}

// Match pairs a stored record with its similarity score for a query.
type Match struct {
	Record CaseRecord
	Score  float64
}
