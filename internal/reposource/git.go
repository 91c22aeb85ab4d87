package reposource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// emptyTreeOID is git's well-known hash of the empty tree, used as the
// diff base for a repository's initial commit (spec.md §4.4 edge case).
const emptyTreeOID = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

const fieldSep = "\x1f"

// GitRepoSource implements RepoSource over a local git checkout by
// shelling out to the git binary, the same approach the teacher's own
// indexer state-tracking uses for commit SHAs and changed-file diffs.
type GitRepoSource struct {
	dir string
}

// New returns a GitRepoSource rooted at a directory that is (or will
// become, after Checkout) a git working copy.
func New(dir string) *GitRepoSource {
	return &GitRepoSource{dir: dir}
}

func (g *GitRepoSource) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (g *GitRepoSource) Checkout(ctx context.Context, rev string) error {
	if _, err := g.run(ctx, "rev-parse", "--verify", rev); err != nil {
		return &ErrRevisionNotFound{Rev: rev}
	}
	if _, err := g.run(ctx, "checkout", "--quiet", rev); err != nil {
		return fmt.Errorf("checkout %s: %w", rev, err)
	}
	return nil
}

func (g *GitRepoSource) FileExistsInWorktree(path string) bool {
	full := filepath.Join(g.dir, path)
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (g *GitRepoSource) ReadWorktreeFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(g.dir, path))
}

// IterCommitsFromHead lists up to maxDepth oids eagerly (one cheap call),
// then lazily loads each commit's full diff as the consumer drains the
// channel; the consumer can stop early (e.g. upon hitting the sentinel
// stop-oid) by canceling ctx, which skips loading the remaining diffs.
func (g *GitRepoSource) IterCommitsFromHead(ctx context.Context, maxDepth int) (<-chan RawCommit, <-chan error) {
	out := make(chan RawCommit)
	errc := make(chan error, 1)

	go func() {
		defer close(out)

		oids, err := g.listOIDs(ctx, maxDepth)
		if err != nil {
			errc <- err
			return
		}
		for _, oid := range oids {
			if ctx.Err() != nil {
				return
			}
			rc, err := g.loadCommit(ctx, oid)
			if err != nil {
				errc <- err
				return
			}
			select {
			case out <- *rc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, errc
}

func (g *GitRepoSource) listOIDs(ctx context.Context, maxDepth int) ([]string, error) {
	args := []string{"rev-list", "--first-parent", "HEAD"}
	if maxDepth > 0 {
		args = append(args, fmt.Sprintf("--max-count=%d", maxDepth))
	}
	out, err := g.run(ctx, args...)
	if err != nil {
		// An empty repository (no commits yet) is not a failure; it simply
		// yields no commits (spec.md §8 scenario S1).
		if strings.Contains(err.Error(), "does not have any commits") || strings.Contains(err.Error(), "unknown revision") {
			return nil, nil
		}
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

func (g *GitRepoSource) loadCommit(ctx context.Context, oid string) (*RawCommit, error) {
	raw, err := g.run(ctx, "show", "-s", "--format=%H"+fieldSep+"%P"+fieldSep+"%B", oid)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(strings.TrimRight(raw, "\n"), fieldSep, 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("unexpected git show output for %s", oid)
	}
	message := parts[2]
	var parents []string
	if strings.TrimSpace(parts[1]) != "" {
		parents = strings.Fields(parts[1])
	}

	base := emptyTreeOID
	if len(parents) > 0 {
		base = parents[0]
	}

	changes, err := g.nameStatus(ctx, base, oid)
	if err != nil {
		return nil, err
	}

	rc := &RawCommit{
		OID:     oid,
		Message: message,
		Parents: parents,
		Diffs:   make(map[string]FileDiff, len(changes)),
	}
	if len(changes) == 0 {
		rc.Empty = true
		return rc, nil
	}
	for _, ch := range changes {
		diffText, err := g.filePatch(ctx, base, oid, ch.path)
		if err != nil {
			return nil, err
		}
		rc.Files = append(rc.Files, ch.path)
		rc.Diffs[ch.path] = FileDiff{Path: ch.path, Diff: diffText, ChangeType: ch.changeType}
	}
	return rc, nil
}

type nameStatusEntry struct {
	path       string
	changeType ChangeType
}

func (g *GitRepoSource) nameStatus(ctx context.Context, base, oid string) ([]nameStatusEntry, error) {
	out, err := g.run(ctx, "diff-tree", "--no-commit-id", "--name-status", "-r", base, oid)
	if err != nil {
		return nil, err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return nil, nil
	}
	var entries []nameStatusEntry
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		var ct ChangeType
		switch fields[0][0] {
		case 'A':
			ct = Added
		case 'D':
			ct = Deleted
		default:
			ct = Modified
		}
		path := fields[len(fields)-1]
		entries = append(entries, nameStatusEntry{path: path, changeType: ct})
	}
	return entries, nil
}

func (g *GitRepoSource) filePatch(ctx context.Context, base, oid, path string) (string, error) {
	return g.run(ctx, "diff", base, oid, "--", path)
}
