package cmd

import (
	"fmt"

	"github.com/ziadkadry99/commitfind/internal/config"
	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/llmchat"
)

// createEmbedderFromConfig builds the Embedder cfg's embedding_provider/
// embedding_model name, falling back to the chat provider when no embedding
// provider is configured.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := string(cfg.EmbeddingProvider)
	if provider == "" {
		provider = string(cfg.Provider)
	}
	model := cfg.EmbeddingModel
	if model == "" {
		preset := config.GetPreset(config.ProviderType(provider), cfg.Quality)
		model = preset.EmbeddingModel
	}
	return embeddings.NewEmbedder(provider, model)
}

// createChatFromConfig builds the Chat cfg's provider/model name.
func createChatFromConfig(cfg *config.Config) (llmchat.Chat, error) {
	provider, err := llmchat.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	return llmchat.NewChat(provider), nil
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `commitfind init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
