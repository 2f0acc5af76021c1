package casebank

import (
	"fmt"

	"github.com/mathmentor/mentor/internal/agents"
)

// Judgment carries the completed pipeline trace plus the human verdict
// that finalizes it into a case record.
type Judgment struct {
	OriginalInput string
	InputType     InputType
	Parsed        agents.ParsedProblem
	Solution      string
	Verification  agents.Verification
	Feedback      Feedback
	UserComment   string
}

// Recorder builds exactly one CaseRecord per judgment and appends it to
// the store. Recording the same trace twice produces two independent
// records; each human judgment is its own event.
type Recorder struct {
	store *Store
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Record validates the judgment, builds the record and appends it.
// Returns the assigned record id.
func (r *Recorder) Record(j Judgment) (string, error) {
	switch j.Feedback {
	case FeedbackCorrect, FeedbackIncorrect, FeedbackNone:
	default:
		return "", fmt.Errorf("invalid feedback value %q", j.Feedback)
	}
	switch j.InputType {
	case InputText, InputImage, InputAudio:
	default:
		return "", fmt.Errorf("invalid input type %q", j.InputType)
	}
	if j.Parsed.ProblemText == "" {
		return "", fmt.Errorf("judgment has no parsed problem text")
	}

	// A comment is only meaningful alongside an incorrect verdict.
	comment := j.UserComment
	if j.Feedback != FeedbackIncorrect {
		comment = ""
	}

	return r.store.Append(CaseRecord{
		OriginalInput: j.OriginalInput,
		InputType:     j.InputType,
		ParsedProblem: j.Parsed,
		Solution:      j.Solution,
		Verification:  j.Verification,
		Feedback:      j.Feedback,
		UserComment:   comment,
	})
}
