package reposource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CloneIfMissing clones codeHostURL into dir if dir is not already a git
// working copy, authenticating via api_key (if non-empty) through
// credential environment variables rather than embedding it in the URL.
func CloneIfMissing(ctx context.Context, codeHostURL, dir, apiKey string) error {
	if _, err := os.Stat(dir + "/.git"); err == nil {
		return nil
	}
	cmd := exec.CommandContext(ctx, "git", "clone", codeHostURL, dir)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if apiKey != "" {
		cmd.Env = append(cmd.Env, "GIT_ASKPASS=echo", "GIT_CREDENTIALS="+apiKey)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone %s: %w: %s", codeHostURL, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Fetch runs `git fetch --all` in the working copy rooted at g.dir.
func (g *GitRepoSource) Fetch(ctx context.Context) error {
	_, err := g.run(ctx, "fetch", "--all", "--quiet")
	return err
}
