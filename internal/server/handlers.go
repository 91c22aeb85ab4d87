package server

import (
	"context"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/ziadkadry99/commitfind/internal/binaryfile"
	"github.com/ziadkadry99/commitfind/internal/commitwalker"
	"github.com/ziadkadry99/commitfind/internal/errs"
	"github.com/ziadkadry99/commitfind/internal/ignore"
	"github.com/ziadkadry99/commitfind/internal/localizer"
	"github.com/ziadkadry99/commitfind/internal/matcher"
	"github.com/ziadkadry99/commitfind/internal/pipeline"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
	"github.com/ziadkadry99/commitfind/internal/tokens"
)

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.ProjectName == "" {
		writeBadRequest(w, "project_name is required")
		return
	}
	if err := s.runLoad(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "loaded", "project_name": req.ProjectName})
}

// runLoad wires one pipeline.Run invocation for req.
func (s *Server) runLoad(ctx context.Context, req LoadRequest) error {
	st := store.New(s.cfg.BaseDir, req.ProjectName)
	if err := st.EnsureDirs(); err != nil {
		return errs.Internal(err)
	}

	llmProvider := req.LLMProvider
	if llmProvider == "" {
		llmProvider = string(s.serviceCfg.Provider)
	}
	llmModel := req.LLMModel
	if llmModel == "" {
		llmModel = s.serviceCfg.Model
	}
	if req.UseMockLLM {
		llmProvider = "mock"
	}
	chat, err := s.chatFor(llmProvider, llmModel)
	if err != nil {
		return errs.Chat(err)
	}

	embedProvider := req.EmbeddingsProvider
	if embedProvider == "" {
		embedProvider = string(s.serviceCfg.EmbeddingProvider)
	}
	embedModel := req.EmbeddingsModel
	if embedModel == "" {
		embedModel = s.serviceCfg.EmbeddingModel
	}
	if req.UseMockLLM {
		embedProvider = "mock"
	}
	embedder, err := s.embedFor(embedProvider, embedModel)
	if err != nil {
		return errs.Embed(err)
	}

	ignoreFiles := req.IgnoreFiles
	if ignoreFiles == nil {
		ignoreFiles = s.serviceCfg.IgnoreFiles
	}

	src := reposource.New(st.Layout.RepoGitDir())
	p := &pipeline.Pipeline{Store: st, Src: src, Chat: chat, Embedder: embedder}

	cfg := pipeline.Config{
		Head:               req.Head,
		IgnoreFiles:        ignoreFiles,
		LLMModel:           llmModel,
		EmbeddingsModel:    embedModel,
		AmplificationLevel: parseAmplificationLevel(req.AmplificationLevel),
		DepthLevel:         req.DepthLevel,
		SummarizerThreads:  req.LLMThreads,
	}
	if cfg.SummarizerThreads <= 0 {
		cfg.SummarizerThreads = s.serviceCfg.SummarizerThreads
	}
	if cfg.Head == "" {
		cfg.Head = "HEAD"
	}

	return p.Run(ctx, cfg, nil)
}

func (s *Server) handleAddRepository(w http.ResponseWriter, r *http.Request) {
	var req AddRepositoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	projectName := req.ProjectName
	if projectName == "" {
		name, err := store.ProjectName(req.CodeHostURL)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		projectName = name
	}
	req.ProjectName = projectName

	st := store.New(s.cfg.BaseDir, projectName)
	if err := st.EnsureDirs(); err != nil {
		writeDomainError(w, errs.Internal(err))
		return
	}
	if err := reposource.CloneIfMissing(r.Context(), req.CodeHostURL, st.Layout.RepoGitDir(), req.APIKey); err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}

	// Initial load runs in the background; the caller is told the clone
	// succeeded and can poll GET /status for indexing progress.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		defer cancel()
		if err := s.runLoad(ctx, req.LoadRequest); err != nil {
			_ = st.AppendErrorLog(err.Error())
		}
	}()

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "repository added, indexing started",
		"full_path":    st.Layout.Root(),
		"project_name": projectName,
	})
}

func (s *Server) handleFetchAndCheckout(w http.ResponseWriter, r *http.Request) {
	var req FetchAndCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	projectName := req.ProjectName
	if projectName == "" {
		name, err := store.ProjectName(req.CodeHostURL)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		projectName = name
	}
	req.ProjectName = projectName

	st := store.New(s.cfg.BaseDir, projectName)
	if err := st.EnsureDirs(); err != nil {
		writeDomainError(w, errs.Internal(err))
		return
	}
	if err := reposource.CloneIfMissing(r.Context(), req.CodeHostURL, st.Layout.RepoGitDir(), req.APIKey); err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}

	src := reposource.New(st.Layout.RepoGitDir())
	if err := src.Fetch(r.Context()); err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}

	rev := req.BranchName
	if rev == "" {
		rev = req.CommitOID
	}
	if rev != "" {
		req.LoadRequest.Head = rev
	}

	if err := s.runLoad(r.Context(), req.LoadRequest); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "fetched and checked out and updated index",
		"branch_name":  req.BranchName,
		"project_name": projectName,
	})
}

func (s *Server) handleInferFile(w http.ResponseWriter, r *http.Request) {
	var req InferFileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeBadRequest(w, "prompt cannot be empty")
		return
	}
	strength := matcher.Strength(req.MatchStrength)
	if _, ok := matcher.Thresholds[strength]; !ok {
		strength = matcher.Mid
	}

	st := store.New(s.cfg.BaseDir, req.Project)
	embedder, err := s.embedFor(string(s.serviceCfg.EmbeddingProvider), s.serviceCfg.EmbeddingModel)
	if err != nil {
		writeDomainError(w, errs.Embed(err))
		return
	}
	model := req.Model
	if model == "" {
		model = s.serviceCfg.Model
	}
	chat, err := s.chatFor(string(s.serviceCfg.Provider), model)
	if err != nil {
		writeDomainError(w, errs.Chat(err))
		return
	}

	logs, err := st.ReadCommitLogs()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	commitEmbeddings, err := st.ReadCommitEmbeddings()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	byOID := make(map[string]store.CommitRecord, len(logs))
	for _, c := range logs {
		byOID[c.OID] = c
	}

	matches, err := matcher.Find(r.Context(), embedder, req.Prompt, strength, 5, commitEmbeddings)
	if err != nil {
		writeDomainError(w, errs.Embed(err))
		return
	}

	ignoreMatcher := ignore.New(req.IgnoreFiles)
	var responses []FileSearchResponse
	for _, m := range matches {
		c, ok := byOID[m.OID]
		if !ok {
			continue
		}
		kept := ignoreMatcher.Filter(c.Files)
		if len(kept) == 0 {
			continue
		}
		responses = append(responses, FileSearchResponse{
			OID:        m.OID,
			Similarity: m.Similarity,
			FilePaths:  toEntries(kept),
			PathType:   "commit",
		})
	}

	src := reposource.New(st.Layout.RepoGitDir())
	head := req.Head
	if head == "" {
		head = "HEAD"
	}
	if err := src.Checkout(r.Context(), head); err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}
	tree, err := localizer.ProjectTree(st.Layout.RepoGitDir())
	if err != nil {
		writeDomainError(w, errs.Internal(err))
		return
	}
	fileCache, err := st.ReadFileCache()
	if err != nil {
		writeDomainError(w, err)
		return
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

	localized, err := localizer.Localize(r.Context(), chat, model, src, tree, req.Prompt, lookup)
	if err != nil {
		writeDomainError(w, errs.Chat(err))
		return
	}
	localized = ignoreMatcher.Filter(localized)
	if len(localized) > 0 {
		responses = append(responses, FileSearchResponse{
			OID:        "file_localizer",
			Similarity: 0,
			FilePaths:  toEntries(localized),
			PathType:   "localization",
		})
	}

	writeJSON(w, http.StatusOK, responses)
}

func toEntries(paths []string) []FilePathEntry {
	out := make([]FilePathEntry, len(paths))
	for i, p := range paths {
		out[i] = FilePathEntry{Path: p}
	}
	return out
}

func (s *Server) handleRetrieveFileContents(w http.ResponseWriter, r *http.Request) {
	var req RetrieveFileContentsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	st := store.New(s.cfg.BaseDir, req.ProjectName)
	src := reposource.New(st.Layout.RepoGitDir())
	ignoreMatcher := ignore.New(req.IgnoreFiles)

	contents := make(map[string]string)
	var retrieved []string
	for _, entry := range req.FilePaths {
		if ignoreMatcher.Matches(entry.Path) {
			continue
		}
		if !src.FileExistsInWorktree(entry.Path) {
			continue
		}
		data, err := src.ReadWorktreeFile(entry.Path)
		if err != nil {
			continue
		}
		if binaryfile.IsBinary(data) {
			continue
		}
		if !utf8.Valid(data) {
			continue
		}
		contents[entry.Path] = string(data)
		retrieved = append(retrieved, entry.Path)
	}

	writeJSON(w, http.StatusOK, RetrieveFileContentsResponse{
		Contents:           contents,
		RetrievedFilePaths: retrieved,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	codeHostURL := r.URL.Query().Get("codehost_url")
	if codeHostURL == "" {
		writeBadRequest(w, "codehost_url is required")
		return
	}
	projectName, err := store.ProjectName(codeHostURL)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	st := store.New(s.cfg.BaseDir, projectName)
	lock := store.NewLock(st.Layout)
	held, elapsed, err := lock.Status()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	errorLog, _ := st.ReadErrorLog()

	writeJSON(w, http.StatusOK, StatusResponse{
		LockFilePresent:  held,
		LockTimeDuration: elapsed.Seconds(),
		ErrorLogs:        errorLog,
	})
}

func (s *Server) handleGetFileSummary(w http.ResponseWriter, r *http.Request) {
	filePaths := r.URL.Query()["file_paths"]
	projectName := r.URL.Query().Get("project_name")
	if projectName == "" || len(filePaths) == 0 {
		writeBadRequest(w, "file_paths and project_name are required")
		return
	}

	st := store.New(s.cfg.BaseDir, projectName)
	logs, err := st.ReadCommitLogs()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var out []FileSummaryResponse
	for _, path := range filePaths {
		if summary, ok := summaryForPath(logs, path); ok {
			out = append(out, FileSummaryResponse{FilePath: path, Summary: summary})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// summaryForPath returns the first summary found for path across logs, in
// log order (newest commit first, matching the original's iteration).
func summaryForPath(logs []store.CommitRecord, path string) (string, bool) {
	for _, c := range logs {
		for i, f := range c.Files {
			if f == path && i < len(c.Summaries) && c.Summaries[i] != "" {
				return c.Summaries[i], true
			}
		}
	}
	return "", false
}

func (s *Server) handleTokenCount(w http.ResponseWriter, r *http.Request) {
	var req TokenCountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	st := store.New(s.cfg.BaseDir, req.ProjectName)
	src := reposource.New(st.Layout.RepoGitDir())

	head := req.Head
	if head == "" {
		head = "HEAD"
	}
	if err := src.Checkout(r.Context(), head); err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}

	logs, err := st.ReadCommitLogs()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	newCommits, err := commitwalker.Walk(r.Context(), src, logs, req.DepthLevel)
	if err != nil {
		writeDomainError(w, errs.Vcs(err))
		return
	}

	ignoreMatcher := ignore.New(req.IgnoreFiles)
	fileCache, err := st.ReadFileCache()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	embeddingTokens := 0
	inferenceTokens := 0
	seen := make(map[string]bool)
	for _, c := range newCommits {
		for _, m := range c.Message {
			embeddingTokens += tokens.Estimate(m)
		}
		for _, f := range c.Files {
			if ignoreMatcher.Matches(f) || seen[f] {
				continue
			}
			seen[f] = true
			if _, cached := fileCache[f]; cached {
				continue
			}
			if data, err := src.ReadWorktreeFile(f); err == nil && !binaryfile.IsBinary(data) {
				inferenceTokens += tokens.Estimate(string(data))
			}
		}
	}

	if tokens.ExceedsCap(inferenceTokens) {
		writeBadRequest(w, "operation would exceed the maximum inference token usage")
		return
	}

	writeJSON(w, http.StatusOK, TokenCountResponse{
		EmbeddingTokens: embeddingTokens,
		InferenceTokens: inferenceTokens,
	})
}
