// Package summarizer implements the per-file summary index: flattening new
// commits into the set of files touched, summarizing each through a bounded
// worker pool (adapted from the teacher's indexer.Batcher), and embedding
// the results in a single batched call (spec.md §4.5).
package summarizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziadkadry99/commitfind/internal/binaryfile"
	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/ignore"
	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

// DefaultConcurrency is the file-summary worker pool size (spec.md §5).
const DefaultConcurrency = 20

// ProgressFunc reports processed/total file counts as summarization runs.
type ProgressFunc func(processed, total int)

// Indexer summarizes new files and maintains the file-summary cache.
type Indexer struct {
	src         reposource.RepoSource
	chat        llmchat.Chat
	embedder    embeddings.Embedder
	ignore      *ignore.Matcher
	concurrency int
	sendOpts    llmchat.SendOptions
	onProgress  ProgressFunc
}

// New builds an Indexer. sendOpts configures every summarization call
// (model, timeout, retries); concurrency <= 0 falls back to
// DefaultConcurrency.
func New(src reposource.RepoSource, chat llmchat.Chat, embedder embeddings.Embedder, matcher *ignore.Matcher, sendOpts llmchat.SendOptions, concurrency int, onProgress ProgressFunc) *Indexer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Indexer{
		src:         src,
		chat:        chat,
		embedder:    embedder,
		ignore:      matcher,
		concurrency: concurrency,
		sendOpts:    sendOpts,
		onProgress:  onProgress,
	}
}

// Run flattens newCommits into the set of files to summarize, summarizes
// and embeds them, updates cache in place, and aligns each commit's
// Summaries slice with its Files slice.
func (idx *Indexer) Run(ctx context.Context, newCommits []store.CommitRecord, cache store.FileCache) (store.FileCache, error) {
	latest := flattenLatest(newCommits, idx.ignore)

	paths := make([]string, 0, len(latest))
	for p := range latest {
		paths = append(paths, p)
	}

	toSummarize := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, cached := cache[p]; cached {
			continue
		}
		toSummarize = append(toSummarize, p)
	}

	summaries, err := idx.summarizeFiles(ctx, toSummarize)
	if err != nil {
		return nil, err
	}

	embeddable := make([]string, 0, len(toSummarize))
	embedPaths := make([]string, 0, len(toSummarize))
	for _, p := range toSummarize {
		s := summaries[p]
		if s == store.EmptySummary || s == "" {
			continue
		}
		embeddable = append(embeddable, s)
		embedPaths = append(embedPaths, p)
	}

	vecs, err := embeddings.EmbedMany(ctx, idx.embedder, embeddable)
	if err != nil {
		return nil, err
	}

	out := make(store.FileCache, len(cache)+len(toSummarize))
	for k, v := range cache {
		out[k] = v
	}
	for _, p := range toSummarize {
		s := summaries[p]
		if s == "" {
			s = store.EmptySummary
		}
		out[p] = store.FileCacheEntry{Summary: s, Embedding: nil}
	}
	for i, p := range embedPaths {
		entry := out[p]
		entry.Embedding = vecs[i]
		out[p] = entry
	}

	alignCommitSummaries(newCommits, out)

	return out, nil
}

// flattenLatest maps each non-ignored path touched by newCommits to the oid
// of the newest commit it appears in (commits are expected newest-first).
func flattenLatest(newCommits []store.CommitRecord, matcher *ignore.Matcher) map[string]string {
	latest := make(map[string]string)
	for _, c := range newCommits {
		for _, f := range c.Files {
			if matcher != nil && matcher.Matches(f) {
				continue
			}
			if _, ok := latest[f]; !ok {
				latest[f] = c.OID
			}
		}
	}
	return latest
}

// summarizeFiles reads each path's working-tree content and summarizes it
// through a bounded worker pool, mirroring the teacher's Batcher: a
// semaphore channel caps in-flight LLM calls, a mutex protects the shared
// results map, and progress is reported after every completion.
func (idx *Indexer) summarizeFiles(ctx context.Context, paths []string) (map[string]string, error) {
	results := make(map[string]string, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	total := len(paths)
	sem := make(chan struct{}, idx.concurrency)
	var mu sync.Mutex
	var processed int
	var wg sync.WaitGroup
	var firstErr error

	for _, path := range paths {
		select {
		case <-ctx.Done():
			mu.Lock()
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			mu.Unlock()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()

			summary, err := idx.summarizeOne(ctx, p)

			mu.Lock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("summarize %s: %w", p, err)
				}
			} else {
				results[p] = summary
			}
			processed++
			if idx.onProgress != nil {
				idx.onProgress(processed, total)
			}
			mu.Unlock()
		}(path)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (idx *Indexer) summarizeOne(ctx context.Context, path string) (string, error) {
	if !idx.src.FileExistsInWorktree(path) {
		return store.EmptySummary, nil
	}
	content, err := idx.src.ReadWorktreeFile(path)
	if err != nil {
		return store.EmptySummary, nil
	}
	if len(content) == 0 {
		return store.EmptySummary, nil
	}
	if binaryfile.IsBinary(content) {
		return store.EmptySummary, nil
	}

	prompt := fmt.Sprintf("Summarize this file (%s):\n%s", path, content)
	return idx.chat.Send(ctx, prompt, idx.sendOpts)
}

// alignCommitSummaries sets commit.Summaries[i] from cache[commit.Files[i]],
// falling back to EmptySummary for files with no cache entry (ignored or
// otherwise skipped).
func alignCommitSummaries(newCommits []store.CommitRecord, cache store.FileCache) {
	for i := range newCommits {
		c := &newCommits[i]
		c.Summaries = make([]string, len(c.Files))
		for j, f := range c.Files {
			entry, ok := cache[f]
			if !ok || entry.Summary == "" {
				c.Summaries[j] = store.EmptySummary
				continue
			}
			c.Summaries[j] = entry.Summary
		}
	}
}
