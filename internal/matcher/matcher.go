// Package matcher finds commits whose embedded text is closest to a query,
// by cosine similarity over the max-scoring vector per commit (spec.md
// §4.8).
package matcher

import (
	"context"
	"math"
	"sort"

	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/store"
)

// Strength is a similarity threshold preset.
type Strength string

const (
	High Strength = "HIGH"
	Mid  Strength = "MID"
	Low  Strength = "LOW"
)

// Thresholds maps each Strength to its minimum cosine similarity.
var Thresholds = map[Strength]float64{
	High: 0.40,
	Mid:  0.30,
	Low:  0.20,
}

// DefaultTopN is the default result cap when the caller does not specify one.
const DefaultTopN = 10

// Match is one scored commit result.
type Match struct {
	OID        string
	Similarity float64
}

// Find embeds query once and scores every stored commit by the maximum
// cosine similarity across its embedded vectors, returning the top_n
// matches at or above strength's threshold, sorted descending.
func Find(ctx context.Context, embedder embeddings.Embedder, query string, strength Strength, topN int, commits store.CommitEmbeddings) ([]Match, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	threshold, ok := Thresholds[strength]
	if !ok {
		threshold = Thresholds[Mid]
	}

	queryVec, err := embeddings.EmbedOne(ctx, embedder, query)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(commits))
	for oid, rec := range commits {
		best := 0.0
		for _, vec := range rec.Embeddings {
			if sim := cosine(queryVec, vec); sim > best {
				best = sim
			}
		}
		if best >= threshold {
			matches = append(matches, Match{OID: oid, Similarity: best})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].OID < matches[j].OID
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// cosine computes dot(a,b) / (|a|*|b|), treating a zero-norm vector (or
// either input being empty) as zero similarity rather than dividing by
// zero.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
