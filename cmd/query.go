package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/commitfind/internal/ignore"
	"github.com/ziadkadry99/commitfind/internal/localizer"
	"github.com/ziadkadry99/commitfind/internal/matcher"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

var (
	queryProject  string
	queryRepo     string
	queryStrength string
	queryHead     string
)

var queryCmd = &cobra.Command{
	Use:   "query [prompt]",
	Short: "Find the commits and files most relevant to a prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryProject, "project", "", "project name (required)")
	queryCmd.Flags().StringVar(&queryRepo, "repo", ".", "path to the git repository, for file localization")
	queryCmd.Flags().StringVar(&queryStrength, "strength", "MID", "match strength: HIGH, MID, or LOW")
	queryCmd.Flags().StringVar(&queryHead, "head", "HEAD", "revision to check out before localizing")
	_ = queryCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	prompt := args[0]
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

	st := store.New(cfg.BaseDir, queryProject)
	logs, err := st.ReadCommitLogs()
	if err != nil {
		return err
	}
	commitEmbeddings, err := st.ReadCommitEmbeddings()
	if err != nil {
		return err
	}
	byOID := make(map[string]store.CommitRecord, len(logs))
	for _, c := range logs {
		byOID[c.OID] = c
	}

	strength := matcher.Strength(strings.ToUpper(queryStrength))
	if _, ok := matcher.Thresholds[strength]; !ok {
		strength = matcher.Mid
	}

	ctx := context.Background()
	matches, err := matcher.Find(ctx, embedder, prompt, strength, matcher.DefaultTopN, commitEmbeddings)
	if err != nil {
		return err
	}

	ignoreMatcher := ignore.New(cfg.IgnoreFiles)
	if len(matches) == 0 {
		fmt.Println("no matching commits")
	}
	for _, m := range matches {
		c, ok := byOID[m.OID]
		if !ok {
			continue
		}
		files := ignoreMatcher.Filter(c.Files)
		if len(files) == 0 {
			continue
		}
		fmt.Printf("%s  similarity=%.3f\n", m.OID, m.Similarity)
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
	}

	src := reposource.New(queryRepo)
	if err := src.Checkout(ctx, queryHead); err != nil {
		return fmt.Errorf("checking out %s: %w", queryHead, err)
	}
	tree, err := localizer.ProjectTree(queryRepo)
	if err != nil {
		return err
	}
	fileCache, err := st.ReadFileCache()
	if err != nil {
		return err
	}
	lookup := func(paths []string) []localizer.FileSummary {
		out := make([]localizer.FileSummary, 0, len(paths))
		for _, p := range paths {
			if entry, ok := fileCache[p]; ok {
				out = append(out, localizer.FileSummary{Path: p, Summary: entry.Summary})
			}
		}
		return out
	}

	localized, err := localizer.Localize(ctx, chat, cfg.Model, src, tree, prompt, lookup)
	if err != nil {
		return err
	}
	localized = ignoreMatcher.Filter(localized)
	if len(localized) > 0 {
		fmt.Println("localized files:")
		for _, f := range localized {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}
