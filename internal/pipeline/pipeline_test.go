package pipeline

import (
	"context"
	"testing"

	"github.com/ziadkadry99/commitfind/internal/amplifier"
	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/progress"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

type fakeSource struct {
	commits []reposource.RawCommit
	files   map[string][]byte
}

func (f *fakeSource) Checkout(ctx context.Context, rev string) error { return nil }

func (f *fakeSource) IterCommitsFromHead(ctx context.Context, maxDepth int) (<-chan reposource.RawCommit, <-chan error) {
	out := make(chan reposource.RawCommit)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		n := len(f.commits)
		if maxDepth > 0 && maxDepth < n {
			n = maxDepth
		}
		for i := 0; i < n; i++ {
			select {
			case out <- f.commits[i]:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, errc
}

func (f *fakeSource) FileExistsInWorktree(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeSource) ReadWorktreeFile(path string) ([]byte, error) {
	return f.files[path], nil
}

type fakeChat struct{}

func (fakeChat) Send(ctx context.Context, prompt string, opts llmchat.SendOptions) (string, error) {
	return "resp", nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}
func (fakeEmbedder) Dimensions() int { return 2 }
func (fakeEmbedder) Name() string    { return "fake" }

func commit(oid string, files ...string) reposource.RawCommit {
	diffs := make(map[string]reposource.FileDiff, len(files))
	for _, f := range files {
		diffs[f] = reposource.FileDiff{Path: f, Diff: "diff", ChangeType: reposource.Modified}
	}
	return reposource.RawCommit{OID: oid, Message: "msg " + oid, Files: files, Diffs: diffs}
}

func TestPipelineRunEndToEndWithoutAmplification(t *testing.T) {
	src := &fakeSource{
		commits: []reposource.RawCommit{commit("c1", "a.go")},
		files:   map[string][]byte{"a.go": []byte("package a")},
	}
	p := &Pipeline{
		Store:    store.New(t.TempDir(), "proj"),
		Src:      src,
		Chat:     fakeChat{},
		Embedder: fakeEmbedder{},
	}

	tracker := progress.NewTracker(activeStages(amplifier.Off), nil)
	err := p.Run(context.Background(), Config{Head: "HEAD", DepthLevel: 10, AmplificationLevel: amplifier.Off}, tracker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, err := p.Store.ReadCommitLogs()
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}
	if len(logs) != 1 || logs[0].OID != "c1" {
		t.Fatalf("expected persisted commit c1, got %+v", logs)
	}

	embeddingsDoc, err := p.Store.ReadCommitEmbeddings()
	if err != nil {
		t.Fatalf("read embeddings: %v", err)
	}
	if _, ok := embeddingsDoc["c1"]; !ok {
		t.Error("expected commit embeddings persisted for c1")
	}

	if tracker.Snapshot().OverallStatus != progress.StageCompleted {
		t.Errorf("expected completed overall status, got %v", tracker.Snapshot().OverallStatus)
	}
}

func TestPipelineRunWithAmplificationPersistsAmplifiedMessage(t *testing.T) {
	src := &fakeSource{
		commits: []reposource.RawCommit{commit("c1", "a.go")},
		files:   map[string][]byte{"a.go": []byte("package a")},
	}
	p := &Pipeline{
		Store:    store.New(t.TempDir(), "proj"),
		Src:      src,
		Chat:     fakeChat{},
		Embedder: fakeEmbedder{},
	}

	err := p.Run(context.Background(), Config{Head: "HEAD", DepthLevel: 10, AmplificationLevel: amplifier.Low}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, err := p.Store.ReadCommitLogs()
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}
	if len(logs[0].Message) != 2 {
		t.Errorf("expected original + amplified message, got %v", logs[0].Message)
	}
}

func TestPipelineRunFailsWhenLockHeld(t *testing.T) {
	s := store.New(t.TempDir(), "proj")
	lock := store.NewLock(s.Layout)
	if err := lock.Acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	p := &Pipeline{Store: s, Src: &fakeSource{}, Chat: fakeChat{}, Embedder: fakeEmbedder{}}
	err := p.Run(context.Background(), Config{Head: "HEAD"}, nil)
	if err == nil {
		t.Fatal("expected locked error")
	}
}

func TestPipelineRunIsIncrementalOnSecondInvocation(t *testing.T) {
	s := store.New(t.TempDir(), "proj")
	src := &fakeSource{
		commits: []reposource.RawCommit{commit("c1", "a.go")},
		files:   map[string][]byte{"a.go": []byte("package a")},
	}
	p := &Pipeline{Store: s, Src: src, Chat: fakeChat{}, Embedder: fakeEmbedder{}}
	if err := p.Run(context.Background(), Config{Head: "HEAD", DepthLevel: 10}, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}

	src.commits = []reposource.RawCommit{commit("c2", "b.go"), commit("c1", "a.go")}
	src.files["b.go"] = []byte("package b")
	if err := p.Run(context.Background(), Config{Head: "HEAD", DepthLevel: 10}, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}

	logs, err := s.ReadCommitLogs()
	if err != nil {
		t.Fatalf("read logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 commits total after incremental run, got %d: %+v", len(logs), logs)
	}
	if logs[0].OID != "c2" || logs[1].OID != "c1" {
		t.Errorf("expected [c2 c1] newest-first, got %+v", logs)
	}
}
