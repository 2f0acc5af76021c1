package agents

import (
	"errors"
	"fmt"
)

// Stage identifies one pipeline phase.
type Stage string

const (
	StageParse   Stage = "parse"
	StageSolve   Stage = "solve"
	StageVerify  Stage = "verify"
	StageExplain Stage = "explain"
)

// StageError tags a failure with the stage that produced it. A stage
// failure aborts the current interaction only; it is never fatal to the
// process.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewParseError wraps err as a parse stage failure.
func NewParseError(err error) *StageError {
	return &StageError{Stage: StageParse, Err: err}
}

// NewSolveError wraps err as a solve stage failure.
func NewSolveError(err error) *StageError {
	return &StageError{Stage: StageSolve, Err: err}
}

// NewVerifyError wraps err as a verify stage failure.
func NewVerifyError(err error) *StageError {
	return &StageError{Stage: StageVerify, Err: err}
}

// NewExplainError wraps err as an explain stage failure.
func NewExplainError(err error) *StageError {
	return &StageError{Stage: StageExplain, Err: err}
}

// FailedStage reports which stage err belongs to, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
