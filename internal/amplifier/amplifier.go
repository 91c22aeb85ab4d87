// Package amplifier appends LLM-generated elaborations to new commits'
// messages, in whole-commit mode (one prompt over all diffs) and per-file
// mode (one prompt per diff), gated by the project's amplification level
// (spec.md §4.6).
package amplifier

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/store"
)

// Level is the caller-selected amplification policy.
type Level string

const (
	Off  Level = "OFF"
	Low  Level = "LOW"
	Mid  Level = "MID"
	High Level = "HIGH"
)

const amplifyTemperature = 0.0

// Run mutates each commit's Message slice in place, appending amplified
// messages per the level policy. Individual commit failures are logged and
// skipped, never aborting the stage.
func Run(ctx context.Context, chat llmchat.Chat, model string, level Level, newCommits []store.CommitRecord) {
	if level == Off {
		return
	}
	for i := range newCommits {
		c := &newCommits[i]
		if err := amplifyWholeCommit(ctx, chat, model, c); err != nil {
			log.Printf("amplifier: whole-commit failed for %s: %v", c.OID, err)
			continue
		}
		if level == Mid || level == High {
			if err := amplifyPerFile(ctx, chat, model, c); err != nil {
				log.Printf("amplifier: per-file failed for %s: %v", c.OID, err)
			}
		}
	}
}

func amplifyWholeCommit(ctx context.Context, chat llmchat.Chat, model string, c *store.CommitRecord) error {
	var b strings.Builder
	for _, f := range c.Files {
		fmt.Fprintf(&b, "%s\n%s\n\n", f, c.Diffs[f].Diff)
	}
	resp, err := chat.Send(ctx, b.String(), llmchat.SendOptions{Model: model, Temperature: amplifyTemperature})
	if err != nil {
		return err
	}
	c.Message = append(c.Message, resp)
	return nil
}

func amplifyPerFile(ctx context.Context, chat llmchat.Chat, model string, c *store.CommitRecord) error {
	var firstErr error
	for _, f := range c.Files {
		prompt := fmt.Sprintf("%s\n%s", f, c.Diffs[f].Diff)
		resp, err := chat.Send(ctx, prompt, llmchat.SendOptions{Model: model, Temperature: amplifyTemperature})
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.Message = append(c.Message, resp)
	}
	return firstErr
}
