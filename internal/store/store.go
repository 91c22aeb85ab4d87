package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/commitfind/internal/errs"
	"github.com/ziadkadry99/commitfind/internal/progress"
)

// Store persists the JSON artifacts for a single project under its Layout.
type Store struct {
	Layout Layout
}

// New builds a Store for projectName rooted at baseDir.
func New(baseDir, projectName string) *Store {
	return &Store{Layout: NewLayout(baseDir, projectName)}
}

// EnsureDirs creates every subtree this project's artifacts live under.
// Mirrors the original DataDir.create_all.
func (s *Store) EnsureDirs() error {
	dirs := []string{
		s.Layout.Root(),
		s.Layout.RepoGitDir(),
		filepath.Dir(s.Layout.CommitsLogsPath()),
		filepath.Dir(s.Layout.CommitsEmbeddingsPath()),
		filepath.Dir(s.Layout.FilesEmbeddingsPath()),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return errs.Internal(fmt.Errorf("creating %s: %w", d, err))
		}
	}
	return nil
}

// ReadCommitLogs returns the persisted commit log, newest-first. Returns an
// empty slice (not an error) if the file is absent.
func (s *Store) ReadCommitLogs() ([]CommitRecord, error) {
	var logs []CommitRecord
	ok, err := readJSON(s.Layout.CommitsLogsPath(), &logs)
	if err != nil {
		return nil, err
	}
	if !ok || logs == nil {
		logs = []CommitRecord{}
	}
	if err := ValidateCommitRecords(logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// WriteCommitLogs replaces commits_logs.json in full.
func (s *Store) WriteCommitLogs(logs []CommitRecord) error {
	if err := ValidateCommitRecords(logs); err != nil {
		return err
	}
	if logs == nil {
		logs = []CommitRecord{}
	}
	return writeJSON(s.Layout.CommitsLogsPath(), logs)
}

// ReadCommitEmbeddings returns the persisted commit-embedding map. Returns
// an empty map (not an error) if the file is absent.
func (s *Store) ReadCommitEmbeddings() (CommitEmbeddings, error) {
	embeddings := CommitEmbeddings{}
	ok, err := readJSON(s.Layout.CommitsEmbeddingsPath(), &embeddings)
	if err != nil {
		return nil, err
	}
	if !ok || embeddings == nil {
		embeddings = CommitEmbeddings{}
	}
	if err := ValidateCommitEmbeddings(embeddings); err != nil {
		return nil, err
	}
	return embeddings, nil
}

// WriteCommitEmbeddings replaces commits_embeddings.json in full.
func (s *Store) WriteCommitEmbeddings(embeddings CommitEmbeddings) error {
	if err := ValidateCommitEmbeddings(embeddings); err != nil {
		return err
	}
	if embeddings == nil {
		embeddings = CommitEmbeddings{}
	}
	return writeJSON(s.Layout.CommitsEmbeddingsPath(), embeddings)
}

// ReadFileCache returns the persisted file→{summary,embedding} cache.
// Returns an empty map (not an error) if the file is absent.
func (s *Store) ReadFileCache() (FileCache, error) {
	cache := FileCache{}
	ok, err := readJSON(s.Layout.FilesEmbeddingsPath(), &cache)
	if err != nil {
		return nil, err
	}
	if !ok || cache == nil {
		cache = FileCache{}
	}
	if err := ValidateFileCache(cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// WriteFileCache replaces files_embeddings.json in full.
func (s *Store) WriteFileCache(cache FileCache) error {
	if err := ValidateFileCache(cache); err != nil {
		return err
	}
	if cache == nil {
		cache = FileCache{}
	}
	return writeJSON(s.Layout.FilesEmbeddingsPath(), cache)
}

// WriteStatus replaces status.json in full with snapshot, for external
// polling of an in-progress run (spec.md §5, §6).
func (s *Store) WriteStatus(snapshot progress.ProjectStatus) error {
	return writeJSON(s.Layout.StatusPath(), snapshot)
}

// AppendErrorLog appends a line to the project's logs.txt.
func (s *Store) AppendErrorLog(line string) error {
	if err := os.MkdirAll(s.Layout.Root(), 0o755); err != nil {
		return errs.Internal(err)
	}
	f, err := os.OpenFile(s.Layout.LogsPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errs.Internal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return errs.Internal(err)
	}
	return nil
}

// ReadErrorLog returns the full contents of logs.txt, or "" if absent.
func (s *Store) ReadErrorLog() (string, error) {
	data, err := os.ReadFile(s.Layout.LogsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errs.Internal(err)
	}
	return string(data), nil
}

// readJSON decodes path into v. Returns ok=false (no error) if the file
// does not exist, matching spec.md §4.1's "reads return empty on absence".
func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Internal(fmt.Errorf("reading %s: %w", path, err))
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errs.Validation("malformed JSON in %s: %v", path, err)
	}
	return true, nil
}

// writeJSON replaces path's contents atomically: marshal, write to a
// sibling temp file, then rename over the destination, so a crash never
// leaves a half-written file (spec.md §4.10's whole-file-write rule).
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Internal(err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Internal(err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Internal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.Internal(err)
	}
	return nil
}
