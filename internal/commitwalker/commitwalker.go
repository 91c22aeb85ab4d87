// Package commitwalker turns a RepoSource's commit stream into the
// incremental set of new commits since the last indexed run, stopping at a
// sentinel oid rather than re-walking history already persisted in commit
// logs (spec.md §4.4).
package commitwalker

import (
	"context"

	"github.com/ziadkadry99/commitfind/internal/errs"
	"github.com/ziadkadry99/commitfind/internal/reposource"
	"github.com/ziadkadry99/commitfind/internal/store"
)

// Walk computes the CommitRecord skeletons for commits newer than the
// most recently indexed one. logs is the project's already-persisted
// commit log, newest-first; maxDepth bounds how far back HEAD is walked.
//
// The stop oid is logs[0].OID when logs is non-empty. Commits are walked
// from HEAD newest-first; the walk terminates as soon as the stop oid is
// encountered (exclusive) or maxDepth commits have been read, whichever
// comes first. Empty commits (no file changes) are skipped but do not
// terminate the walk. The result is newest-first, matching logs' own
// ordering, ready to be prepended to logs by the caller.
func Walk(ctx context.Context, src reposource.RepoSource, logs []store.CommitRecord, maxDepth int) ([]store.CommitRecord, error) {
	var stopOID string
	if len(logs) > 0 {
		stopOID = logs[0].OID
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out, errc := src.IterCommitsFromHead(ctx, maxDepth)

	var newCommits []store.CommitRecord
	for rc := range out {
		if stopOID != "" && rc.OID == stopOID {
			cancel()
			break
		}
		if rc.Empty {
			continue
		}
		newCommits = append(newCommits, toRecord(rc))
	}

	select {
	case err := <-errc:
		if err != nil {
			return nil, errs.Vcs(err)
		}
	default:
	}

	return newCommits, nil
}

func toRecord(rc reposource.RawCommit) store.CommitRecord {
	diffs := make(map[string]store.DiffEntry, len(rc.Diffs))
	for path, fd := range rc.Diffs {
		diffs[path] = store.DiffEntry{
			Diff:    fd.Diff,
			Added:   fd.ChangeType == reposource.Added,
			Deleted: fd.ChangeType == reposource.Deleted,
		}
	}
	return store.CommitRecord{
		OID:     rc.OID,
		Message: []string{rc.Message},
		Files:   rc.Files,
		Diffs:   diffs,
	}
}
