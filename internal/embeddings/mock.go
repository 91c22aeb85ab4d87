package embeddings

import (
	"context"
	"hash/fnv"
)

const mockDimensions = 16

// MockEmbedder produces deterministic, content-derived vectors without
// calling out to any backend. Used when a project is loaded with
// use_mock_llm, and in tests.
type MockEmbedder struct{}

// NewMockEmbedder creates a mock embedder with a fixed dimensionality.
func NewMockEmbedder() *MockEmbedder { return &MockEmbedder{} }

func (m *MockEmbedder) Name() string    { return "mock" }
func (m *MockEmbedder) Dimensions() int { return mockDimensions }

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = deterministicVector(t)
	}
	return out, nil
}

// deterministicVector derives a unit-ish vector from text's FNV hash so the
// same text always embeds to the same point, without importing a real model.
func deterministicVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, mockDimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		bucket := int64(seed>>33) % 2000
		vec[i] = float32(bucket) / 1000.0
	}
	return vec
}
