package store

import "github.com/ziadkadry99/commitfind/internal/errs"

// ValidateCommitRecords checks the alignment invariants from spec.md §8.1:
// every commit has matching files/summaries lengths once summaries are
// populated.
func ValidateCommitRecords(logs []CommitRecord) error {
	seen := make(map[string]bool, len(logs))
	for _, c := range logs {
		if c.OID == "" {
			return errs.Validation("commit record missing oid")
		}
		if seen[c.OID] {
			return errs.Validation("duplicate commit oid %s", c.OID)
		}
		seen[c.OID] = true
		if c.Summaries != nil && len(c.Files) != len(c.Summaries) {
			return errs.Validation("commit %s: len(files)=%d != len(summaries)=%d", c.OID, len(c.Files), len(c.Summaries))
		}
	}
	return nil
}

// ValidateCommitEmbeddings checks len(messages) == len(embeddings) per
// commit, per spec.md §8.1.
func ValidateCommitEmbeddings(embeddings CommitEmbeddings) error {
	for oid, rec := range embeddings {
		if len(rec.Messages) != len(rec.Embeddings) {
			return errs.Validation("commit embedding %s: len(messages)=%d != len(embeddings)=%d", oid, len(rec.Messages), len(rec.Embeddings))
		}
	}
	return nil
}

// ValidateFileCache checks every entry has a non-empty summary, per
// spec.md §4.5 step 5. A skipped file still carries EmptySummary, never a
// blank string.
func ValidateFileCache(cache FileCache) error {
	for path, entry := range cache {
		if entry.Summary == "" {
			return errs.Validation("file cache entry %q has an empty summary (want %q for skipped files)", path, EmptySummary)
		}
	}
	return nil
}
