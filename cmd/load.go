package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/commitfind/internal/amplifier"
	"github.com/ziadkadry99/commitfind/internal/pipeline"
	"github.com/ziadkadry99/commitfind/internal/progress"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

var (
	loadProject string
	loadRepo    string
	loadHead    string
	loadDepth   int
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Index a local git repository's commit history",
	Long:  `Walks new commits, summarizes changed files, optionally amplifies commit messages, and embeds everything so query can find it.`,
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadProject, "project", "", "project name this index is stored under (required)")
	loadCmd.Flags().StringVar(&loadRepo, "repo", ".", "path to the git repository to index")
	loadCmd.Flags().StringVar(&loadHead, "head", "HEAD", "revision to check out before indexing")
	loadCmd.Flags().IntVar(&loadDepth, "depth", 0, "maximum number of new commits to walk (0 = unbounded)")
	_ = loadCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	chat, err := createChatFromConfig(cfg)
	if err != nil {
		return err
	}
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return err
	}

	st := store.New(cfg.BaseDir, loadProject)
	if err := st.EnsureDirs(); err != nil {
		return fmt.Errorf("preparing store: %w", err)
	}

	p := &pipeline.Pipeline{
		Store:    st,
		Src:      reposource.New(loadRepo),
		Chat:     chat,
		Embedder: embedder,
	}

	amp := amplifier.Level(cfg.AmplificationLevel)
	pcfg := pipeline.Config{
		Head:               loadHead,
		IgnoreFiles:        cfg.IgnoreFiles,
		LLMModel:           cfg.Model,
		EmbeddingsModel:    cfg.EmbeddingModel,
		AmplificationLevel: amp,
		DepthLevel:         loadDepth,
		SummarizerThreads:  cfg.SummarizerThreads,
	}

	tracker := progress.NewTracker(stagesFor(amp), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reporter := progress.NewReporter()
	reporter.Start(100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(progress.UpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				snap := tracker.Snapshot()
				reporter.Update(int(snap.OverallProgress), describeStages(snap))
				return
			case <-ticker.C:
				snap := tracker.Snapshot()
				reporter.Update(int(snap.OverallProgress), describeStages(snap))
			}
		}
	}()

	err = p.Run(ctx, pcfg, tracker)
	cancel()
	<-done
	reporter.Finish()

	if err != nil {
		return fmt.Errorf("indexing %s: %w", loadProject, err)
	}
	fmt.Printf("indexed %s\n", loadProject)
	return nil
}

func stagesFor(level amplifier.Level) []progress.StageKey {
	stages := []progress.StageKey{progress.StageAddCommitsAndSummaries}
	if level != amplifier.Off {
		stages = append(stages, progress.StageCommitAmplification)
	}
	return append(stages, progress.StageGenerateCommitEmbeddings)
}

func describeStages(snap progress.ProjectStatus) string {
	var active []string
	for _, s := range snap.Stages {
		if s.Status == progress.StageActive {
			active = append(active, s.Name)
		}
	}
	if len(active) == 0 {
		return "Indexing commits"
	}
	return "Indexing commits (" + strings.Join(active, ", ") + ")"
}
