package embeddings

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/commitfind/internal/auth"
)

// NewEmbedder creates an Embedder for the given provider/model pair.
// Supported providers: "openai", "google" (hosted, arbitrary dimension),
// "ollama" (local family, L2-normalized), "mock".
func NewEmbedder(providerType, model string) (Embedder, error) {
	switch providerType {
	case "openai":
		apiKey := auth.GetAPIKey("openai")
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found.\nRun `commitfind auth openai` or set OPENAI_API_KEY")
		}
		return NewOpenAIEmbedder(apiKey, OpenAIModel(model)), nil

	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("Google API key not found.\nSet GOOGLE_API_KEY")
		}
		return NewGoogleEmbedder(apiKey, GoogleModel(model)), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		dims := 768
		return NewNormalizingEmbedder(NewOllamaEmbedder(model, dims, host)), nil

	case "mock":
		return NewMockEmbedder(), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
