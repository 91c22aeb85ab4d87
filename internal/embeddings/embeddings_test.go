package embeddings

import (
	"context"
	"math"
	"testing"
)

type fakeEmbedder struct {
	calls [][]string
	dim   int
}

func (f *fakeEmbedder) Name() string    { return "fake" }
func (f *fakeEmbedder) Dimensions() int { return f.dim }

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func TestEmbedManyPreservesAlignmentAroundEmptyInputs(t *testing.T) {
	f := &fakeEmbedder{dim: 3}
	vecs, err := EmbedMany(context.Background(), f, []string{"a", "", "b", "   ", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(vecs))
	}
	if vecs[1] != nil || vecs[3] != nil {
		t.Errorf("expected nil vectors for empty/whitespace input, got %v / %v", vecs[1], vecs[3])
	}
	for _, idx := range []int{0, 2, 4} {
		if vecs[idx] == nil {
			t.Errorf("expected non-nil vector at index %d", idx)
		}
	}
	if len(f.calls) != 1 || len(f.calls[0]) != 3 {
		t.Errorf("expected exactly one batched call over 3 non-empty texts, got %v", f.calls)
	}
}

func TestEmbedManyAllEmptySkipsBackend(t *testing.T) {
	f := &fakeEmbedder{dim: 3}
	vecs, err := EmbedMany(context.Background(), f, []string{"", "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs[0] != nil || vecs[1] != nil {
		t.Error("expected all-nil output")
	}
	if len(f.calls) != 0 {
		t.Errorf("expected backend never called, got %d calls", len(f.calls))
	}
}

func TestTruncateToTokenCap(t *testing.T) {
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}
	out := TruncateToTokenCap(string(long), 512)
	if len(out) != 512*4 {
		t.Errorf("expected truncation to %d chars, got %d", 512*4, len(out))
	}

	short := "hello"
	if TruncateToTokenCap(short, 512) != short {
		t.Error("short text should be unchanged")
	}
}

func TestL2Normalize(t *testing.T) {
	v := []float32{3, 4}
	L2Normalize(v)
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if math.Abs(sumSq-1.0) > 1e-6 {
		t.Errorf("expected unit vector, got squared norm %f", sumSq)
	}
}

func TestL2NormalizeZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	got := L2Normalize(v)
	for _, x := range got {
		if x != 0 {
			t.Errorf("expected zero vector unchanged, got %v", got)
		}
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	m := NewMockEmbedder()
	v1, _ := EmbedOne(context.Background(), m, "find auth bug")
	v2, _ := EmbedOne(context.Background(), m, "find auth bug")
	if len(v1) != m.Dimensions() {
		t.Fatalf("expected %d dims, got %d", m.Dimensions(), len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("mock embedder is not deterministic at index %d: %v vs %v", i, v1, v2)
		}
	}
}

func TestNormalizingEmbedderWrapsOutputs(t *testing.T) {
	f := &fakeEmbedder{dim: 3}
	n := NewNormalizingEmbedder(f)
	vecs, err := n.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sumSq float64
	for _, x := range vecs[0] {
		sumSq += float64(x) * float64(x)
	}
	if math.Abs(sumSq-1.0) > 1e-6 {
		t.Errorf("expected normalized vector, got squared norm %f", sumSq)
	}
}
