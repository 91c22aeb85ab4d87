package config

import (
	"fmt"
	"os"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .commitfind.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to commitfind! Let's configure this project.")
	fmt.Println()

	provider, err := selectProvider()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}

	quality, err := selectQuality()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}

	preset := GetPreset(provider, quality)

	baseDir, err := promptWithDefault("Base directory for the index", ".commitfind")
	if err != nil {
		return nil, fmt.Errorf("base dir: %w", err)
	}

	ignoreStr, err := promptWithDefault("Extra ignore patterns (comma-separated, leave blank for defaults)", "")
	if err != nil {
		return nil, fmt.Errorf("ignore patterns: %w", err)
	}
	ignoreFiles := DefaultIgnoreFiles
	if ignoreStr != "" {
		ignoreFiles = append(ignoreFiles, splitAndTrim(ignoreStr)...)
	}

	cfg := &Config{
		BindAddr:           "127.0.0.1:8420",
		BaseDir:            baseDir,
		Provider:           provider,
		Model:              preset.Model,
		EmbeddingProvider:  embeddingProviderFor(provider),
		EmbeddingModel:     preset.EmbeddingModel,
		Quality:            quality,
		IgnoreFiles:        ignoreFiles,
		AmplificationLevel: AmplificationOff,
		DepthLevel:         0,
		SummarizerThreads:  20,
		LockTTLHours:       2.0,
		MaxCostUSD:         10.0,
	}

	envVar := APIKeyEnvVar(provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			switch string(provider) {
			case "anthropic", "openai", "google":
				fmt.Printf("\nNote: Set %s in your environment, or run `commitfind auth %s`.\n", envVar, provider)
			default:
				fmt.Printf("\nNote: Set %s in your environment.\n", envVar)
			}
		}
	}

	configPath := ".commitfind.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings are used for all cloud providers.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}

// splitAndTrim splits a comma-separated string and trims whitespace,
// dropping empty tokens.
func splitAndTrim(s string) []string {
	var result []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			token := trimSpace(s[start:i])
			if token != "" {
				result = append(result, token)
			}
			start = i + 1
		}
	}
	return result
}

func trimSpace(s string) string {
	i, j := 0, len(s)
	for i < j && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	for j > i && (s[j-1] == ' ' || s[j-1] == '\t') {
		j--
	}
	return s[i:j]
}
