// Package pipeline orchestrates one project's indexing run: lock
// acquisition, the three ordered stages (commits+summaries, amplification,
// embeddings), status tracking, and persistence ordering (spec.md §4.10).
package pipeline

import (
	"context"

	"github.com/ziadkadry99/commitfind/internal/amplifier"
	"github.com/ziadkadry99/commitfind/internal/commitembedder"
	"github.com/ziadkadry99/commitfind/internal/commitwalker"
	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/errs"
	"github.com/ziadkadry99/commitfind/internal/ignore"
	"github.com/ziadkadry99/commitfind/internal/llmchat"
	"github.com/ziadkadry99/commitfind/internal/progress"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
	"github.com/ziadkadry99/commitfind/internal/summarizer"
)

// Config holds the per-run settings a /load request supplies.
type Config struct {
	Head               string
	IgnoreFiles        []string
	LLMModel           string
	EmbeddingsModel    string
	AmplificationLevel amplifier.Level
	DepthLevel         int
	SummarizerThreads  int
}

// Pipeline wires together the components one indexing run needs. A single
// Pipeline value is safe to reuse across sequential runs for the same
// project; the project lock (spec.md §3) prevents concurrent runs from
// overlapping.
type Pipeline struct {
	Store    *store.Store
	Src      reposource.RepoSource
	Chat     llmchat.Chat
	Embedder embeddings.Embedder
}

// run carries the state threaded between stages of a single Run call.
type run struct {
	cfg        Config
	tracker    *progress.Tracker
	newCommits []store.CommitRecord
}

// activeStages returns the stage keys that run this invocation, in order,
// per the amplification level (spec.md §4.10).
func activeStages(level amplifier.Level) []progress.StageKey {
	stages := []progress.StageKey{progress.StageAddCommitsAndSummaries}
	if level != amplifier.Off {
		stages = append(stages, progress.StageCommitAmplification)
	}
	stages = append(stages, progress.StageGenerateCommitEmbeddings)
	return stages
}

// Run executes one full indexing pass for cfg, reporting progress through
// tracker (a fresh one is created if nil). The project lock is acquired
// first and always released on return, whether the run succeeds or fails.
func (p *Pipeline) Run(ctx context.Context, cfg Config, tracker *progress.Tracker) error {
	lock := store.NewLock(p.Store.Layout)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	if err := p.Src.Checkout(ctx, cfg.Head); err != nil {
		return errs.Vcs(err)
	}

	if tracker == nil {
		tracker = progress.NewTracker(activeStages(cfg.AmplificationLevel), nil)
	}
	r := &run{cfg: cfg, tracker: tracker}

	updaterCtx, stopUpdater := context.WithCancel(ctx)
	updaterDone := make(chan struct{})
	go func() {
		defer close(updaterDone)
		progress.RunUpdater(updaterCtx, tracker, p.Store.WriteStatus)
	}()
	defer func() { stopUpdater(); <-updaterDone }()

	if err := p.runAddCommitsAndSummaries(ctx, r); err != nil {
		tracker.FailStage(progress.StageAddCommitsAndSummaries, err)
		return err
	}
	tracker.CompleteStage(progress.StageAddCommitsAndSummaries)

	if cfg.AmplificationLevel != amplifier.Off {
		if err := p.runAmplification(ctx, r); err != nil {
			tracker.FailStage(progress.StageCommitAmplification, err)
			return err
		}
		tracker.CompleteStage(progress.StageCommitAmplification)
	}

	if err := p.runEmbeddings(ctx, r); err != nil {
		tracker.FailStage(progress.StageGenerateCommitEmbeddings, err)
		return err
	}
	tracker.CompleteStage(progress.StageGenerateCommitEmbeddings)

	return nil
}

func (p *Pipeline) runAddCommitsAndSummaries(ctx context.Context, r *run) error {
	r.tracker.StartStage(progress.StageAddCommitsAndSummaries)

	logs, err := p.Store.ReadCommitLogs()
	if err != nil {
		return err
	}
	fileCache, err := p.Store.ReadFileCache()
	if err != nil {
		return err
	}

	newCommits, err := commitwalker.Walk(ctx, p.Src, logs, r.cfg.DepthLevel)
	if err != nil {
		return err
	}

	matcher := ignore.New(r.cfg.IgnoreFiles)
	indexer := summarizer.New(p.Src, p.Chat, p.Embedder, matcher,
		llmchat.SendOptions{Model: r.cfg.LLMModel},
		r.cfg.SummarizerThreads,
		func(processed, total int) {
			if total == 0 {
				return
			}
			r.tracker.SetProgress(progress.StageAddCommitsAndSummaries, float64(processed)/float64(total)*100)
		},
	)
	updatedCache, err := indexer.Run(ctx, newCommits, fileCache)
	if err != nil {
		return err
	}

	merged := append(newCommits, logs...)
	if err := p.Store.WriteCommitLogs(merged); err != nil {
		return err
	}
	if err := p.Store.WriteFileCache(updatedCache); err != nil {
		return err
	}

	r.newCommits = newCommits
	return nil
}

func (p *Pipeline) runAmplification(ctx context.Context, r *run) error {
	r.tracker.StartStage(progress.StageCommitAmplification)
	amplifier.Run(ctx, p.Chat, r.cfg.LLMModel, r.cfg.AmplificationLevel, r.newCommits)
	r.tracker.SetProgress(progress.StageCommitAmplification, 100)

	logs, err := p.Store.ReadCommitLogs()
	if err != nil {
		return err
	}
	merged := mergeAmplified(logs, r.newCommits)
	// Persisted here, before embeddings, so amplified messages are durable
	// before the embeddings file can reference them (spec.md §4.10).
	return p.Store.WriteCommitLogs(merged)
}

func (p *Pipeline) runEmbeddings(ctx context.Context, r *run) error {
	r.tracker.StartStage(progress.StageGenerateCommitEmbeddings)

	fileCache, err := p.Store.ReadFileCache()
	if err != nil {
		return err
	}
	existing, err := p.Store.ReadCommitEmbeddings()
	if err != nil {
		return err
	}

	updated, _, err := commitembedder.Run(ctx, p.Embedder, r.newCommits, fileCache, existing)
	if err != nil {
		return err
	}
	r.tracker.SetProgress(progress.StageGenerateCommitEmbeddings, 100)

	return p.Store.WriteCommitEmbeddings(updated)
}

// mergeAmplified replaces logs entries with their now-amplified
// counterparts from amplified, matched by oid (stage ordering guarantees
// amplified holds exactly the commits runAddCommitsAndSummaries just
// prepended to logs).
func mergeAmplified(logs []store.CommitRecord, amplified []store.CommitRecord) []store.CommitRecord {
	byOID := make(map[string]store.CommitRecord, len(amplified))
	for _, c := range amplified {
		byOID[c.OID] = c
	}
	merged := make([]store.CommitRecord, len(logs))
	for i, c := range logs {
		if a, ok := byOID[c.OID]; ok {
			merged[i] = a
			continue
		}
		merged[i] = c
	}
	return merged
}
