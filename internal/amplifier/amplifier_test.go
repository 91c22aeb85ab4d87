package amplifier

import (
	"context"
	"errors"
	"testing"

	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/store"
)

type fakeChat struct {
	prompts []string
	fail    map[string]bool
}

func (f *fakeChat) Send(ctx context.Context, prompt string, opts llmchat.SendOptions) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.fail[prompt] {
		return "", errors.New("boom")
	}
	return "amplified: " + prompt, nil
}

func newCommit() store.CommitRecord {
	return store.CommitRecord{
		OID:     "c1",
		Message: []string{"original"},
		Files:   []string{"a.go", "b.go"},
		Diffs: map[string]store.DiffEntry{
			"a.go": {Diff: "diff-a"},
			"b.go": {Diff: "diff-b"},
		},
	}
}

func TestRunOffSkipsStage(t *testing.T) {
	chat := &fakeChat{}
	commits := []store.CommitRecord{newCommit()}
	Run(context.Background(), chat, "model", Off, commits)
	if len(commits[0].Message) != 1 {
		t.Errorf("expected message untouched, got %v", commits[0].Message)
	}
	if len(chat.prompts) != 0 {
		t.Errorf("expected no chat calls, got %d", len(chat.prompts))
	}
}

func TestRunLowAmplifiesWholeCommitOnce(t *testing.T) {
	chat := &fakeChat{}
	commits := []store.CommitRecord{newCommit()}
	Run(context.Background(), chat, "model", Low, commits)
	if len(commits[0].Message) != 2 {
		t.Fatalf("expected original + 1 amplified message, got %v", commits[0].Message)
	}
	if len(chat.prompts) != 1 {
		t.Errorf("expected exactly 1 whole-commit call, got %d", len(chat.prompts))
	}
}

func TestRunMidAmplifiesWholeCommitThenPerFile(t *testing.T) {
	chat := &fakeChat{}
	commits := []store.CommitRecord{newCommit()}
	Run(context.Background(), chat, "model", Mid, commits)
	if len(commits[0].Message) != 4 {
		t.Fatalf("expected original + whole-commit + 2 per-file messages, got %v", commits[0].Message)
	}
	if len(chat.prompts) != 3 {
		t.Errorf("expected 1 whole-commit + 2 per-file calls, got %d", len(chat.prompts))
	}
}

func TestRunHighMatchesMid(t *testing.T) {
	chatMid := &fakeChat{}
	commitsMid := []store.CommitRecord{newCommit()}
	Run(context.Background(), chatMid, "model", Mid, commitsMid)

	chatHigh := &fakeChat{}
	commitsHigh := []store.CommitRecord{newCommit()}
	Run(context.Background(), chatHigh, "model", High, commitsHigh)

	if len(commitsMid[0].Message) != len(commitsHigh[0].Message) {
		t.Errorf("expected HIGH to produce the same message count as MID, got MID=%d HIGH=%d",
			len(commitsMid[0].Message), len(commitsHigh[0].Message))
	}
}

func TestRunSkipsFailedCommitWithoutAbortingStage(t *testing.T) {
	c1 := newCommit()
	c1.OID = "fails"
	c2 := newCommit()
	c2.OID = "succeeds"
	commits := []store.CommitRecord{c1, c2}

	var wholeCommitPrompt string
	for _, f := range c1.Files {
		wholeCommitPrompt += f + "\n" + c1.Diffs[f].Diff + "\n\n"
	}
	chat := &fakeChat{fail: map[string]bool{wholeCommitPrompt: true}}

	Run(context.Background(), chat, "model", Low, commits)

	if len(commits[0].Message) != 1 {
		t.Errorf("expected failed commit's message untouched, got %v", commits[0].Message)
	}
	if len(commits[1].Message) != 2 {
		t.Errorf("expected second commit still amplified, got %v", commits[1].Message)
	}
}
