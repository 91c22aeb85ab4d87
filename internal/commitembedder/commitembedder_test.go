package commitembedder

import (
	"context"
	"testing"

	"github.com/ziadkadry99/commitfind/internal/store"
)

type fakeEmbedder struct {
	calls [][]string
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), float32(i)}
	}
	return out, nil
}
func (f *fakeEmbedder) Dimensions() int { return 2 }
func (f *fakeEmbedder) Name() string    { return "fake" }

func TestRunReusesCachedSummaryVectors(t *testing.T) {
	embedder := &fakeEmbedder{}
	commits := []store.CommitRecord{
		{
			OID:       "c1",
			Message:   []string{"original", "amplified"},
			Files:     []string{"a.go"},
			Summaries: []string{"summary a"},
		},
	}
	cache := store.FileCache{"a.go": {Summary: "summary a", Embedding: []float32{1, 1}}}

	out, newOIDs, err := Run(context.Background(), embedder, commits, cache, store.CommitEmbeddings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(newOIDs) != 1 || newOIDs[0] != "c1" {
		t.Errorf("expected new oid [c1], got %v", newOIDs)
	}
	rec := out["c1"]
	if len(rec.Messages) != 3 || len(rec.Embeddings) != 3 {
		t.Fatalf("expected 3 texts/embeddings (original+amplified+summary), got %d/%d", len(rec.Messages), len(rec.Embeddings))
	}
	if rec.Embeddings[2][0] != 1 || rec.Embeddings[2][1] != 1 {
		t.Errorf("expected cached summary vector reused, got %v", rec.Embeddings[2])
	}
	// Only the two messages should have required a fresh embed call.
	if len(embedder.calls) != 1 || len(embedder.calls[0]) != 2 {
		t.Errorf("expected single batched call over 2 texts, got %v", embedder.calls)
	}
}

func TestRunEmbedsSummaryWhenNotCached(t *testing.T) {
	embedder := &fakeEmbedder{}
	commits := []store.CommitRecord{
		{OID: "c1", Message: []string{"msg"}, Files: []string{"a.go"}, Summaries: []string{"fresh summary"}},
	}

	out, _, err := Run(context.Background(), embedder, commits, store.FileCache{}, store.CommitEmbeddings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out["c1"].Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(out["c1"].Embeddings))
	}
	if len(embedder.calls[0]) != 2 {
		t.Errorf("expected both msg and summary batched in one call, got %v", embedder.calls)
	}
}

func TestRunBatchesAcrossMultipleCommitsInOneCall(t *testing.T) {
	embedder := &fakeEmbedder{}
	commits := []store.CommitRecord{
		{OID: "c1", Message: []string{"m1"}, Files: nil, Summaries: nil},
		{OID: "c2", Message: []string{"m2"}, Files: nil, Summaries: nil},
	}

	_, newOIDs, err := Run(context.Background(), embedder, commits, store.FileCache{}, store.CommitEmbeddings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(newOIDs) != 2 {
		t.Errorf("expected 2 new oids, got %v", newOIDs)
	}
	if len(embedder.calls) != 1 {
		t.Fatalf("expected exactly one batched embed call across both commits, got %d calls", len(embedder.calls))
	}
	if len(embedder.calls[0]) != 2 {
		t.Errorf("expected batch of 2 texts, got %v", embedder.calls[0])
	}
}

func TestRunMergesIntoExistingEmbeddings(t *testing.T) {
	embedder := &fakeEmbedder{}
	existing := store.CommitEmbeddings{"old": {Messages: []string{"x"}, Embeddings: [][]float32{{1, 2}}}}
	commits := []store.CommitRecord{{OID: "new", Message: []string{"m"}}}

	out, _, err := Run(context.Background(), embedder, commits, store.FileCache{}, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out["old"]; !ok {
		t.Error("expected existing entry preserved")
	}
	if _, ok := out["new"]; !ok {
		t.Error("expected new entry added")
	}
}
