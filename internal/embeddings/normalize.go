package embeddings

import (
	"context"
	"math"
)

// L2Normalize scales vec to unit length in place and returns it. A
// zero-norm vector is returned unchanged.
func L2Normalize(vec []float32) []float32 {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return vec
	}
	norm := math.Sqrt(sumSq)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}

// normalizingEmbedder wraps an Embedder from the local sentence-encoder
// family (fixed dimensionality, model weights cached on disk) and
// L2-normalizes every vector it returns, per spec.md §4.3.
type normalizingEmbedder struct {
	inner Embedder
}

// NewNormalizingEmbedder wraps inner so every embedding it returns is
// L2-normalized. Use for local-family backends such as Ollama.
func NewNormalizingEmbedder(inner Embedder) Embedder {
	return &normalizingEmbedder{inner: inner}
}

func (n *normalizingEmbedder) Name() string    { return n.inner.Name() }
func (n *normalizingEmbedder) Dimensions() int { return n.inner.Dimensions() }

func (n *normalizingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := n.inner.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vecs {
		L2Normalize(v)
	}
	return vecs, nil
}
