package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level mentor configuration, corresponding to .mentor.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	// DataDir holds the case memory file, the knowledge vector store and
	// the usage ledger database.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`

	// KnowledgeDir is the directory of reference material ingested into
	// the knowledge base.
	KnowledgeDir string   `yaml:"knowledge_dir" koanf:"knowledge_dir"`
	Include      []string `yaml:"include" koanf:"include"`
	Exclude      []string `yaml:"exclude" koanf:"exclude"`

	// RetrievalLimit caps the knowledge passages handed to the solver.
	RetrievalLimit int `yaml:"retrieval_limit" koanf:"retrieval_limit"`
	// SimilarLimit caps the prior cases surfaced alongside a solve.
	SimilarLimit int `yaml:"similar_limit" koanf:"similar_limit"`

	// StageTimeoutSeconds bounds each pipeline stage call.
	StageTimeoutSeconds int `yaml:"stage_timeout_seconds" koanf:"stage_timeout_seconds"`

	// RequestsPerMinute rate-limits LLM calls. Zero means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	Server ServerConfig `yaml:"server" koanf:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
