package embeddings

import (
	"context"
	"fmt"
	"strings"
)

// DefaultTokenCap is the model-agnostic truncation cap applied before any
// text reaches an Embedder. Individual Embedder implementations may apply a
// tighter cap internally; this one is the floor shared by every backend.
const DefaultTokenCap = 512

// EmbedOne embeds a single text, truncating it to the token cap first. It
// returns a nil vector (not an error) for empty/whitespace-only input.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := EmbedMany(ctx, e, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedMany embeds a batch of texts, preserving index alignment with the
// input slice: an empty/whitespace-only text produces a nil entry in the
// output without ever reaching the backend. Non-empty texts are truncated
// to DefaultTokenCap before being sent.
func EmbedMany(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	toEmbed := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		toEmbed = append(toEmbed, TruncateToTokenCap(t, DefaultTokenCap))
		positions = append(positions, i)
	}
	if len(toEmbed) == 0 {
		return out, nil
	}

	vecs, err := e.Embed(ctx, toEmbed)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(toEmbed) {
		return nil, fmt.Errorf("embeddings: backend %s returned %d vectors for %d inputs", e.Name(), len(vecs), len(toEmbed))
	}
	for i, pos := range positions {
		out[pos] = vecs[i]
	}
	return out, nil
}

// TruncateToTokenCap truncates text so that its naive token-count estimate
// (one token per four characters, rounded up) stays within capTokens.
func TruncateToTokenCap(text string, capTokens int) string {
	if capTokens <= 0 {
		return text
	}
	capChars := capTokens * 4
	r := []rune(text)
	if len(r) <= capChars {
		return text
	}
	return string(r[:capChars])
}
