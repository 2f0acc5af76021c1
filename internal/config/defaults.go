package config

// ModelPreset describes the default chat and embedding models for a provider.
type ModelPreset struct {
	Model          string
	EmbeddingModel string
}

// modelPresets maps each provider to its recommended models.
var modelPresets = map[ProviderType]ModelPreset{
	ProviderAnthropic: {Model: "claude-sonnet-4-5-20250929", EmbeddingModel: "text-embedding-3-small"},
	ProviderOpenAI:    {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama:    {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// DefaultExcludes are glob patterns excluded from knowledge ingestion by default.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"**/*.png",
	"**/*.jpg",
	"**/*.pdf",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:            ProviderOpenAI,
		Model:               "gpt-4o",
		EmbeddingProvider:   ProviderOpenAI,
		EmbeddingModel:      "text-embedding-3-small",
		DataDir:             ".mentor",
		KnowledgeDir:        "knowledge",
		Include:             []string{"**/*.md", "**/*.txt"},
		Exclude:             DefaultExcludes,
		RetrievalLimit:      3,
		SimilarLimit:        3,
		StageTimeoutSeconds: 120,
		RequestsPerMinute:   0,
		Server: ServerConfig{
			Port:            8722,
			AllowAllOrigins: false,
		},
	}
}

// GetPreset returns the model preset for the given provider.
// Returns the OpenAI preset if the provider is not recognized.
func GetPreset(provider ProviderType) ModelPreset {
	if preset, ok := modelPresets[provider]; ok {
		return preset
	}
	return modelPresets[ProviderOpenAI]
}
