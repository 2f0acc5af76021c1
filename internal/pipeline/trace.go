// Package pipeline orchestrates the four reasoning stages into a
// single solving run: parse, retrieve, solve, verify, explain, then
// hold the result for human feedback.
package pipeline

import (
	"time"

	"github.com/mathmentor/mentor/internal/agents"
	"github.com/mathmentor/mentor/internal/casebank"
)

// State names a point in a solving run's lifecycle. Transitions are
// strictly forward; Failed is terminal.
type State string

const (
	StateIdle             State = "idle"
	StateParsed           State = "parsed"
	StateRetrieved        State = "retrieved"
	StateSolved           State = "solved"
	StateVerified         State = "verified"
	StateExplained        State = "explained"
	StateAwaitingFeedback State = "awaiting_feedback"
	StateRecorded         State = "recorded"
	StateFailed           State = "failed"
)

// Trace accumulates the artifacts of one solving run as it moves
// through the stages.
type Trace struct {
	ID            string             `json:"id"`
	StartedAt     time.Time          `json:"started_at"`
	OriginalInput string             `json:"original_input"`
	InputType     casebank.InputType `json:"input_type"`
	State         State              `json:"state"`
	FailedStage   agents.Stage       `json:"failed_stage,omitempty"`

	Parsed       *agents.ParsedProblem `json:"parsed_problem,omitempty"`
	SimilarCases []casebank.Match      `json:"similar_cases,omitempty"`
	Retrieved    []agents.Passage      `json:"retrieved_context,omitempty"`
	Solution     *agents.Solution      `json:"solution,omitempty"`
	Verification *agents.Verification  `json:"verification,omitempty"`
	Explanation  string                `json:"explanation,omitempty"`
}

// Event is emitted after each state transition, for progress display.
type Event struct {
	TraceID string `json:"trace_id"`
	State   State  `json:"state"`
	Detail  string `json:"detail,omitempty"`
}
