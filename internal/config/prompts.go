package config

import "github.com/manifoldco/promptui"

func selectProvider() (ProviderType, error) {
	prompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"anthropic", "openai", "google", "ollama", "minimax", "openrouter", "mock"},
	}
	_, providerStr, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return ProviderType(providerStr), nil
}

func selectQuality() (QualityTier, error) {
	prompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   — fast & cheap",
			"normal — balanced",
			"max    — highest quality",
		},
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return []QualityTier{QualityLite, QualityNormal, QualityMax}[idx], nil
}

func promptWithDefault(label, def string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
	}
	return prompt.Run()
}
