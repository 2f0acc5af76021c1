package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mathmentor/mentor/internal/agents"
	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/knowledge"
)

// DefaultStageTimeout bounds a single stage's LLM call when no timeout
// is configured.
const DefaultStageTimeout = 120 * time.Second

// Options configures an Orchestrator. Parser, Solver, Verifier and
// Explainer are required; the rest degrade gracefully when absent.
type Options struct {
	Parser    agents.Parser
	Solver    agents.Solver
	Verifier  agents.Verifier
	Explainer agents.Explainer

	// Retriever supplies reference passages to the solver. Optional;
	// retrieval failures never abort a run.
	Retriever knowledge.Retriever

	// Bank supplies similar past cases and receives judged records.
	Bank *casebank.Store

	StageTimeout   time.Duration
	RetrievalLimit int
	SimilarLimit   int

	// Notify is called after each state transition. Optional; Run
	// callers can override it per run with RunWithNotify.
	Notify func(Event)
}

// Orchestrator drives a problem through parse, retrieval, solve,
// verify and explain, then parks the trace for human feedback.
type Orchestrator struct {
	opts     Options
	recorder *casebank.Recorder
	pending  *Registry
}

// New creates an orchestrator from the given options.
func New(opts Options) *Orchestrator {
	if opts.StageTimeout <= 0 {
		opts.StageTimeout = DefaultStageTimeout
	}
	if opts.RetrievalLimit <= 0 {
		opts.RetrievalLimit = 3
	}
	if opts.SimilarLimit <= 0 {
		opts.SimilarLimit = 3
	}
	o := &Orchestrator{opts: opts, pending: NewRegistry()}
	if opts.Bank != nil {
		o.recorder = casebank.NewRecorder(opts.Bank)
	}
	return o
}

// Run solves one problem end to end. On success the returned trace is
// in StateAwaitingFeedback and registered for a later Feedback call.
// On a stage failure the trace is returned alongside the error, with
// the artifacts produced so far.
func (o *Orchestrator) Run(ctx context.Context, input string, inputType casebank.InputType) (*Trace, error) {
	return o.RunWithNotify(ctx, input, inputType, o.opts.Notify)
}

// RunWithNotify is Run with a per-run progress callback replacing the
// configured one.
func (o *Orchestrator) RunWithNotify(ctx context.Context, input string, inputType casebank.InputType, notify func(Event)) (*Trace, error) {
	r := &run{o: o, notify: notify}
	return r.execute(ctx, input, inputType)
}

// run is one solving attempt with its progress callback.
type run struct {
	o      *Orchestrator
	notify func(Event)
}

func (r *run) execute(ctx context.Context, input string, inputType casebank.InputType) (*Trace, error) {
	o := r.o
	trace := &Trace{
		ID:            uuid.New().String(),
		StartedAt:     time.Now().UTC(),
		OriginalInput: input,
		InputType:     inputType,
		State:         StateIdle,
	}

	parsed, err := runStage(ctx, o.opts.StageTimeout, func(sctx context.Context) (*agents.ParsedProblem, error) {
		return o.opts.Parser.Parse(sctx, input)
	})
	if err != nil {
		return trace, r.fail(trace, agents.StageParse, err)
	}
	trace.Parsed = parsed
	r.transition(trace, StateParsed, parsed.Topic)

	// Similar past cases are advisory context, never a gate.
	if o.opts.Bank != nil {
		trace.SimilarCases = o.opts.Bank.FindSimilar(parsed.ProblemText, o.opts.SimilarLimit)
	}

	if o.opts.Retriever != nil {
		passages, rerr := o.opts.Retriever.Retrieve(ctx, parsed.ProblemText, o.opts.RetrievalLimit)
		if rerr != nil {
			log.Printf("pipeline: knowledge retrieval failed, solving without references: %v", rerr)
		} else {
			trace.Retrieved = passages
		}
	}
	r.transition(trace, StateRetrieved, fmt.Sprintf("%d passages, %d similar cases", len(trace.Retrieved), len(trace.SimilarCases)))

	solution, err := runStage(ctx, o.opts.StageTimeout, func(sctx context.Context) (*agents.Solution, error) {
		return o.opts.Solver.Solve(sctx, parsed, trace.Retrieved)
	})
	if err != nil {
		return trace, r.fail(trace, agents.StageSolve, err)
	}
	trace.Solution = solution
	r.transition(trace, StateSolved, "")

	verification, err := runStage(ctx, o.opts.StageTimeout, func(sctx context.Context) (*agents.Verification, error) {
		return o.opts.Verifier.Verify(sctx, parsed.ProblemText, solution.Text)
	})
	if err != nil {
		return trace, r.fail(trace, agents.StageVerify, err)
	}
	trace.Verification = verification
	r.transition(trace, StateVerified, fmt.Sprintf("correct=%t confidence=%.2f", verification.IsCorrect, verification.Confidence))

	explanation, err := runStage(ctx, o.opts.StageTimeout, func(sctx context.Context) (string, error) {
		return o.opts.Explainer.Explain(sctx, parsed.ProblemText, solution.Text)
	})
	if err != nil {
		return trace, r.fail(trace, agents.StageExplain, err)
	}
	trace.Explanation = explanation
	r.transition(trace, StateExplained, "")

	trace.State = StateAwaitingFeedback
	o.pending.Put(trace)
	r.emit(trace, "")

	return trace, nil
}

// Feedback finalizes a pending trace with the human verdict, persists
// it as a case record and returns the record id.
func (o *Orchestrator) Feedback(traceID string, fb casebank.Feedback, comment string) (string, error) {
	if o.recorder == nil {
		return "", fmt.Errorf("no case store configured")
	}
	trace, ok := o.pending.Take(traceID)
	if !ok {
		return "", fmt.Errorf("no pending trace %q", traceID)
	}

	id, err := o.recorder.Record(casebank.Judgment{
		OriginalInput: trace.OriginalInput,
		InputType:     trace.InputType,
		Parsed:        *trace.Parsed,
		Solution:      trace.Solution.Text,
		Verification:  *trace.Verification,
		Feedback:      fb,
		UserComment:   comment,
	})
	if err != nil {
		// A persist failure still appended the record in memory; the
		// trace must not stay claimable or a retry would append a
		// duplicate. Hand back the id with the error instead.
		var perr *casebank.PersistError
		if errors.As(err, &perr) && id != "" {
			trace.State = StateRecorded
			if o.opts.Notify != nil {
				o.opts.Notify(Event{TraceID: trace.ID, State: trace.State, Detail: id})
			}
			return id, err
		}
		// Validation failures wrote nothing; keep the trace claimable
		// so feedback can be retried.
		o.pending.Put(trace)
		return "", err
	}

	trace.State = StateRecorded
	if o.opts.Notify != nil {
		o.opts.Notify(Event{TraceID: trace.ID, State: trace.State, Detail: id})
	}
	return id, nil
}

// Discard drops a pending trace without recording it.
func (o *Orchestrator) Discard(traceID string) bool {
	_, ok := o.pending.Take(traceID)
	return ok
}

// Pending returns the trace awaiting feedback with the given id.
func (o *Orchestrator) Pending(traceID string) (*Trace, bool) {
	return o.pending.Get(traceID)
}

// runStage invokes fn under the per-stage timeout.
func runStage[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(sctx)
}

func (r *run) transition(t *Trace, s State, detail string) {
	t.State = s
	r.emit(t, detail)
}

func (r *run) fail(t *Trace, fallback agents.Stage, err error) error {
	stage, ok := agents.FailedStage(err)
	if !ok {
		stage = fallback
		err = &agents.StageError{Stage: fallback, Err: err}
	}
	t.State = StateFailed
	t.FailedStage = stage
	r.emit(t, err.Error())
	return err
}

func (r *run) emit(t *Trace, detail string) {
	if r.notify != nil {
		r.notify(Event{TraceID: t.ID, State: t.State, Detail: detail})
	}
}
