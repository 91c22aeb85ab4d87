// Package localizer implements two-phase LLM file localization: an initial
// pass over a project-tree view, then a refinement pass informed by the
// survivors' summaries, fused into a single ranked file list (spec.md §4.9).
package localizer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/reposource"
)

var excludeDirs = map[string]bool{
	".git":        true,
	".venv":       true,
	"venv":        true,
	"env":         true,
	"virtualenv":  true,
	"lib64":       true,
	"node_modules": true,
	"__pycache__": true,
}

const (
	noRelevantFiles   = "no relevant files found."
	noAdditionalFiles = "no additional relevant files."
)

const firstPhasePromptTemplate = `Please look through the following problem description and repository structure and provide a list of files that may be relevant.

### Problem Description ###
%s
###

### Repository Structure ###
%s
###

Please only provide the full paths relative to the repository root directory and return at most 5 files.
The returned files should be separated by new lines, listed in order of relevancy (most relevant at the top), and wrapped with triple backticks.

If no files seem relevant, return:
` + "```\nNo relevant files found.\n```"

const refinePromptTemplate = `Let's refine our file selection. I've identified some potentially relevant files and obtained their summaries:

### Initial Relevant Files with Summaries ###
%s
###

Given these summaries and the original problem, please identify any ADDITIONAL files that may be relevant.

### Problem Description ###
%s
###

### Repository Structure ###
%s
###

Please only provide the full paths of ADDITIONAL files (not already mentioned above) that may be relevant, wrapped with triple backticks.

If no additional files seem relevant, return:
` + "```\nNo additional relevant files.\n```"

// FileSummary pairs a path with its cached summary, used to build the
// phase-2 refinement prompt.
type FileSummary struct {
	Path    string
	Summary string
}

// SummaryLookup resolves cached summaries for phase-1 survivors, e.g.
// backed by the project's file-summary cache.
type SummaryLookup func(paths []string) []FileSummary

// Localize runs both phases and returns the fused, deduplicated file list.
func Localize(ctx context.Context, chat llmchat.Chat, model string, src reposource.RepoSource, tree []string, problemStatement string, lookup SummaryLookup) ([]string, error) {
	structure := formatStructure(tree)

	firstPrompt := fmt.Sprintf(firstPhasePromptTemplate, problemStatement, structure)
	firstOutput, err := chat.Send(ctx, firstPrompt, llmchat.SendOptions{Model: model})
	if err != nil {
		return nil, err
	}
	firstFound := existingFiles(src, parseModelOutput(firstOutput))
	if len(firstFound) == 0 {
		return nil, nil
	}

	summaries := lookup(firstFound)
	secondPrompt := fmt.Sprintf(refinePromptTemplate, formatSummaries(summaries), problemStatement, structure)
	secondOutput, err := chat.Send(ctx, secondPrompt, llmchat.SendOptions{Model: model})
	if err != nil {
		log.Printf("localizer: phase 2 failed, degrading to phase-1 results: %v", err)
		return firstFound, nil
	}
	additionalFound := existingFiles(src, parseModelOutput(secondOutput))

	return fuse(firstFound, additionalFound), nil
}

// fuse keeps the union of both phases, deduplicated, prioritizing the
// first 3 entries from phase 1 and the first 2 from phase 2.
func fuse(firstFound, additionalFound []string) []string {
	prioritized := make([]string, 0, 5)
	seen := make(map[string]bool)
	for _, f := range firstN(firstFound, 3) {
		if !seen[f] {
			prioritized = append(prioritized, f)
			seen[f] = true
		}
	}
	for _, f := range firstN(additionalFound, 2) {
		if !seen[f] {
			prioritized = append(prioritized, f)
			seen[f] = true
		}
	}

	var remaining []string
	for _, f := range append(append([]string{}, firstFound...), additionalFound...) {
		if !seen[f] {
			seen[f] = true
			remaining = append(remaining, f)
		}
	}
	return append(prioritized, remaining...)
}

func firstN(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// existingFiles filters suggested paths to those that actually exist in
// the worktree, normalizing path separators first.
func existingFiles(src reposource.RepoSource, suggested []string) []string {
	out := make([]string, 0, len(suggested))
	for _, p := range suggested {
		norm := filepath.ToSlash(filepath.Clean(p))
		if src.FileExistsInWorktree(norm) {
			out = append(out, norm)
		}
	}
	return out
}

// parseModelOutput extracts file paths from the LLM's response: content
// between the first pair of triple backticks (or the whole trimmed
// response if none are present), split into non-empty lines, with the two
// sentinel "no files" responses mapped to an empty result.
func parseModelOutput(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	body := content
	if start := strings.Index(content, "```"); start != -1 {
		rest := content[start+3:]
		if end := strings.Index(rest, "```"); end != -1 {
			body = rest[:end]
		} else {
			body = rest
		}
	}

	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}
	if len(lines) == 1 {
		lower := strings.ToLower(lines[0])
		if lower == noRelevantFiles || lower == noAdditionalFiles {
			return nil
		}
	}
	return lines
}

// formatStructure renders a flat file list as an indented tree view,
// excluding VCS/virtualenv/cache directories and dotfiles.
func formatStructure(paths []string) string {
	filtered := make([]string, 0, len(paths))
	for _, p := range paths {
		if includePath(p) {
			filtered = append(filtered, filepath.ToSlash(p))
		}
	}
	sort.Strings(filtered)
	return strings.Join(filtered, "\n")
}

func includePath(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == "" {
			continue
		}
		if excludeDirs[part] {
			return false
		}
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return true
}

func formatSummaries(summaries []FileSummary) string {
	if len(summaries) == 0 {
		return "No file summaries available."
	}
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "File: %s\nSummary: %s\n\n", s.Path, s.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}
