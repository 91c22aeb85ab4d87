package config

// QualityTier controls the model selection trade-off between speed/cost
// and quality when a project does not pin an exact model.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	ProviderMiniMax    ProviderType = "minimax"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderMock       ProviderType = "mock"
)

// AmplificationLevel is the config-file/env representation of
// amplifier.Level, kept as a plain string so this package does not need to
// import internal/amplifier.
type AmplificationLevel string

const (
	AmplificationOff  AmplificationLevel = "OFF"
	AmplificationLow  AmplificationLevel = "LOW"
	AmplificationMid  AmplificationLevel = "MID"
	AmplificationHigh AmplificationLevel = "HIGH"
)

// Config is the top-level commitfind service configuration, corresponding
// to .commitfind.yml. It holds the process-wide and per-project defaults
// that a /load request can override; it does not hold per-project state,
// which lives under Store.Layout instead.
type Config struct {
	BindAddr string `yaml:"bind_addr" koanf:"bind_addr"`
	BaseDir  string `yaml:"base_dir" koanf:"base_dir"`

	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier  `yaml:"quality" koanf:"quality"`

	IgnoreFiles        []string           `yaml:"ignore_files" koanf:"ignore_files"`
	AmplificationLevel AmplificationLevel `yaml:"amplification_level" koanf:"amplification_level"`
	DepthLevel         int                `yaml:"depth_level" koanf:"depth_level"`
	UseMockLLM         bool               `yaml:"use_mock_llm" koanf:"use_mock_llm"`

	SummarizerThreads int     `yaml:"summarizer_threads" koanf:"summarizer_threads"`
	LockTTLHours      float64 `yaml:"lock_ttl_hours" koanf:"lock_ttl_hours"`
	MaxCostUSD        float64 `yaml:"max_cost_usd" koanf:"max_cost_usd"`
}
