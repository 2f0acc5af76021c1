package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mathmentor/mentor/internal/agents"
	"github.com/mathmentor/mentor/internal/casebank"
	"github.com/mathmentor/mentor/internal/config"
	"github.com/mathmentor/mentor/internal/db"
	"github.com/mathmentor/mentor/internal/knowledge"
	"github.com/mathmentor/mentor/internal/llm"
	"github.com/mathmentor/mentor/internal/pipeline"
	"github.com/mathmentor/mentor/internal/usage"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `mentor init` to create a config file", err)
	}
	return cfg, nil
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings, rate-limited when requests_per_minute is set.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}

// createEmbedderFromConfig creates a knowledge.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (knowledge.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}
	model := cfg.EmbeddingModel
	if model == "" {
		model = config.GetPreset(provider).EmbeddingModel
	}

	switch provider {
	case config.ProviderOllama:
		return knowledge.NewOllamaEmbedder(model, 768, ""), nil
	default:
		// Anthropic has no embeddings API; OpenAI serves both cases.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for embeddings")
		}
		return knowledge.NewOpenAIEmbedder(apiKey, knowledge.OpenAIModel(model)), nil
	}
}

// openBank opens the case memory store under the configured data dir.
func openBank(cfg *config.Config) (*casebank.Store, error) {
	bank, err := casebank.Open(cfg.CaseFile())
	if err != nil {
		return nil, fmt.Errorf("opening case memory: %w", err)
	}
	return bank, nil
}

// openMeter opens the usage ledger. A ledger failure is not fatal to
// solving; callers get a nil meter and a warning.
func openMeter(cfg *config.Config) *usage.Meter {
	database, err := db.Open(cfg.UsageDB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: usage ledger unavailable: %v\n", err)
		return nil
	}
	return usage.NewMeter(database)
}

// loadIndex creates the knowledge index and loads the persisted
// vectors if present. A missing index is fine; retrieval is optional.
func loadIndex(ctx context.Context, cfg *config.Config) (*knowledge.Index, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	ix, err := knowledge.NewIndex(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating knowledge index: %w", err)
	}
	if err := ix.Load(ctx, cfg.VectorDir()); err != nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "No knowledge index at %s (run `mentor ingest` to build one)\n", cfg.VectorDir())
		}
	}
	return ix, nil
}

// buildOrchestrator assembles the full pipeline from config. The
// retriever may be nil; the meter may be nil.
func buildOrchestrator(cfg *config.Config, retriever knowledge.Retriever, bank *casebank.Store, meter *usage.Meter, notify func(pipeline.Event)) (*pipeline.Orchestrator, error) {
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	stageProvider := func(stage agents.Stage) llm.Provider {
		if meter == nil {
			return provider
		}
		return meter.Wrap(string(stage), provider)
	}

	return pipeline.New(pipeline.Options{
		Parser:         agents.NewParser(stageProvider(agents.StageParse), cfg.Model),
		Solver:         agents.NewSolver(stageProvider(agents.StageSolve), cfg.Model),
		Verifier:       agents.NewVerifier(stageProvider(agents.StageVerify), cfg.Model),
		Explainer:      agents.NewExplainer(stageProvider(agents.StageExplain), cfg.Model),
		Retriever:      retriever,
		Bank:           bank,
		StageTimeout:   time.Duration(cfg.StageTimeoutSeconds) * time.Second,
		RetrievalLimit: cfg.RetrievalLimit,
		SimilarLimit:   cfg.SimilarLimit,
		Notify:         notify,
	}), nil
}
