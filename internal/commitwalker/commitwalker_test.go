package commitwalker

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

type fakeSource struct {
	commits []reposource.RawCommit
	err     error
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
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- f.commits[i]:
			case <-ctx.Done():
				return
			}
		}
		if f.err != nil {
			errc <- f.err
		}
	}()
	return out, errc
}

func (f *fakeSource) FileExistsInWorktree(path string) bool { return true }

func (f *fakeSource) ReadWorktreeFile(path string) ([]byte, error) { return nil, nil }

func commit(oid string, empty bool, files ...string) reposource.RawCommit {
	diffs := make(map[string]reposource.FileDiff, len(files))
	for _, f := range files {
		diffs[f] = reposource.FileDiff{Path: f, Diff: "diff for " + f, ChangeType: reposource.Modified}
	}
	return reposource.RawCommit{OID: oid, Message: "msg " + oid, Files: files, Diffs: diffs, Empty: empty}
}

func TestWalkStopsAtSentinelExclusive(t *testing.T) {
	src := &fakeSource{commits: []reposource.RawCommit{
		commit("c3", false, "a.go"),
		commit("c2", false, "b.go"),
		commit("c1", false, "c.go"),
	}}
	logs := []store.CommitRecord{{OID: "c2"}}

	got, err := Walk(context.Background(), src, logs, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].OID != "c3" {
		t.Errorf("expected only c3 before the sentinel, got %+v", got)
	}
}

func TestWalkSkipsEmptyCommitsWithoutTerminating(t *testing.T) {
	src := &fakeSource{commits: []reposource.RawCommit{
		commit("c3", false, "a.go"),
		commit("c2", true),
		commit("c1", false, "c.go"),
	}}

	got, err := Walk(context.Background(), src, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 non-empty commits, got %d", len(got))
	}
	if got[0].OID != "c3" || got[1].OID != "c1" {
		t.Errorf("expected [c3 c1] newest-first, got %+v", got)
	}
}

func TestWalkTruncatesAtMaxDepthWhenSentinelMissing(t *testing.T) {
	src := &fakeSource{commits: []reposource.RawCommit{
		commit("c3", false, "a.go"),
		commit("c2", false, "b.go"),
		commit("c1", false, "c.go"),
	}}
	logs := []store.CommitRecord{{OID: "does-not-exist"}}

	got, err := Walk(context.Background(), src, logs, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected depth-bounded truncation to 2 commits, got %d", len(got))
	}
}

func TestWalkEmptyLogsHasNoSentinel(t *testing.T) {
	src := &fakeSource{commits: []reposource.RawCommit{commit("c1", false, "a.go")}}

	got, err := Walk(context.Background(), src, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].OID != "c1" {
		t.Errorf("expected c1 with no sentinel to stop it, got %+v", got)
	}
}

func TestWalkPropagatesVcsFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}

	_, err := Walk(context.Background(), src, nil, 10)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestWalkRecordsChangeTypeAndMessage(t *testing.T) {
	src := &fakeSource{commits: []reposource.RawCommit{commit("c1", false, "a.go")}}

	got, err := Walk(context.Background(), src, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 commit, got %d", len(got))
	}
	rec := got[0]
	if len(rec.Message) != 1 || rec.Message[0] != "msg c1" {
		t.Errorf("expected original message preserved as sole entry, got %v", rec.Message)
	}
	if rec.Summaries != nil {
		t.Errorf("expected nil summaries in skeleton, got %v", rec.Summaries)
	}
	diff, ok := rec.Diffs["a.go"]
	if !ok {
		t.Fatal("expected diff entry for a.go")
	}
	if diff.Added || diff.Deleted {
		t.Errorf("expected modified change type to set neither flag, got %+v", diff)
	}
}
