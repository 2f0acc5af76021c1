// Package usage records per-request LLM token consumption and
// estimated cost to a SQLite ledger.
package usage

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mathmentor/mentor/internal/db"
	"github.com/mathmentor/mentor/internal/llm"
)

// Record is one LLM call as stored in the ledger.
type Record struct {
	ID           string
	Timestamp    time.Time
	Stage        string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// Meter writes usage records to the ledger database.
type Meter struct {
	db *db.DB
}

// NewMeter creates a meter backed by the given database.
func NewMeter(d *db.DB) *Meter {
	return &Meter{db: d}
}

// Track records one completed LLM call. Ledger failures are logged and
// never surfaced to the caller.
func (m *Meter) Track(stage, provider string, resp *llm.CompletionResponse) {
	if m == nil || resp == nil {
		return
	}
	_, err := m.db.Exec(`INSERT INTO llm_usage (id, timestamp, stage, provider, model, input_tokens, output_tokens, cost_usd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		time.Now().UTC().Format(time.RFC3339),
		stage,
		provider,
		resp.Model,
		resp.InputTokens,
		resp.OutputTokens,
		llm.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens),
	)
	if err != nil {
		log.Printf("usage: failed to record %s call: %v", stage, err)
	}
}

// Wrap returns a Provider that reports every successful completion to
// the meter under the given stage label.
func (m *Meter) Wrap(stage string, p llm.Provider) llm.Provider {
	return &meteredProvider{meter: m, stage: stage, inner: p}
}

type meteredProvider struct {
	meter *Meter
	stage string
	inner llm.Provider
}

func (p *meteredProvider) Name() string {
	return p.inner.Name()
}

func (p *meteredProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	resp, err := p.inner.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	p.meter.Track(p.stage, p.inner.Name(), resp)
	return resp, nil
}
