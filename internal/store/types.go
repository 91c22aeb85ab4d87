// Package store implements the on-disk layout and persistence for a
// project's commit logs, commit embeddings, file-summary cache, status, and
// advisory lock. Reads return an empty mapping/list when a file is absent;
// writes are whole-file replace operations (spec.md §4.1).
package store

// EmptySummary is the sentinel stored in CommitRecord.Summaries for files
// skipped because they are binary, empty, unreadable, or ignored. Carried
// verbatim from the Python original so previously-migrated caches keep
// resolving to the same sentinel.
const EmptySummary = "eddf150cd15072ba4a8474209ec090fedd4d79e4"

// DiffEntry is the patch text and change-type flags for one file in a commit.
type DiffEntry struct {
	Diff    string `json:"diff"`
	Added   bool   `json:"added"`
	Deleted bool   `json:"deleted"`
}

// CommitRecord is one entry in commits_logs.json. Invariant: len(Files) ==
// len(Summaries), and Files[i] pairs with Summaries[i].
type CommitRecord struct {
	OID       string               `json:"oid"`
	Message   []string             `json:"message"`
	Files     []string             `json:"files"`
	Diffs     map[string]DiffEntry `json:"diffs"`
	Summaries []string             `json:"summaries"`
}

// CommitEmbeddingRecord is one entry in commits_embeddings.json, keyed by
// commit oid. Invariant: len(Messages) == len(Embeddings).
type CommitEmbeddingRecord struct {
	Messages   []string    `json:"messages"`
	Embeddings [][]float32 `json:"embeddings"`
}

// CommitEmbeddings is the full commits_embeddings.json document.
type CommitEmbeddings map[string]CommitEmbeddingRecord

// FileCacheEntry is one entry in files_embeddings.json, keyed by
// repo-relative file path.
type FileCacheEntry struct {
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding"`
}

// FileCache is the full files_embeddings.json document.
type FileCache map[string]FileCacheEntry
