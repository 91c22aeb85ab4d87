package matcher

import (
	"context"
	"testing"

	"github.com/ziadkadry99/commitfind/internal/store"
)

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Name() string    { return "fake" }

func TestFindFiltersByStrengthThreshold(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	commits := store.CommitEmbeddings{
		"exact":  {Messages: []string{"m"}, Embeddings: [][]float32{{1, 0}}},
		"orthog": {Messages: []string{"m"}, Embeddings: [][]float32{{0, 1}}},
	}

	matches, err := Find(context.Background(), embedder, "query", High, 10, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].OID != "exact" {
		t.Errorf("expected only exact match above HIGH threshold, got %+v", matches)
	}
}

func TestFindUsesMaxOverMultipleVectors(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	commits := store.CommitEmbeddings{
		"c1": {Messages: []string{"m1", "m2"}, Embeddings: [][]float32{{0, 1}, {1, 0}}},
	}

	matches, err := Find(context.Background(), embedder, "query", High, 10, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 1 || matches[0].Similarity != 1.0 {
		t.Errorf("expected max-over-vectors similarity of 1.0, got %+v", matches)
	}
}

func TestFindSortsDescendingAndTruncatesTopN(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	commits := store.CommitEmbeddings{
		"low":  {Messages: []string{"m"}, Embeddings: [][]float32{{0.5, 0.5}}},
		"high": {Messages: []string{"m"}, Embeddings: [][]float32{{1, 0}}},
		"mid":  {Messages: []string{"m"}, Embeddings: [][]float32{{0.9, 0.1}}},
	}

	matches, err := Find(context.Background(), embedder, "query", Low, 2, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected top_n=2 truncation, got %d", len(matches))
	}
	if matches[0].OID != "high" {
		t.Errorf("expected highest similarity first, got %+v", matches)
	}
	if matches[0].Similarity < matches[1].Similarity {
		t.Errorf("expected descending order, got %+v", matches)
	}
}

func TestFindZeroNormVectorIsNeverAMatch(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	commits := store.CommitEmbeddings{
		"zero": {Messages: []string{"m"}, Embeddings: [][]float32{{0, 0}}},
	}

	matches, err := Find(context.Background(), embedder, "query", Low, 10, commits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected zero-norm vector excluded, got %+v", matches)
	}
}
