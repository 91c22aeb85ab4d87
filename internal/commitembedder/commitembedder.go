// Package commitembedder builds commits_embeddings.json entries for new
// commits: each commit's message (original+amplified) and file summaries
// are embedded, reusing cached summary vectors where available and
// batching every remaining embed call into one request (spec.md §4.7).
package commitembedder

import (
	"context"

	"github.com/ziadkadry99/commitfind/internal/embeddings"
	"github.com/ziadkadry99/commitfind/internal/store"
)

// toEmbedRef points back at the (commit index, text index) a batched
// embedding result belongs to, so a single flat embed_many call can be
// reassembled per commit afterward.
type toEmbedRef struct {
	commitIdx int
	textIdx   int
}

// Run embeds every new commit's texts and merges the results into
// existing, returning the updated embeddings document plus the set of
// oids added or refreshed this run.
func Run(ctx context.Context, embedder embeddings.Embedder, newCommits []store.CommitRecord, fileCache store.FileCache, existing store.CommitEmbeddings) (store.CommitEmbeddings, []string, error) {
	out := make(store.CommitEmbeddings, len(existing)+len(newCommits))
	for k, v := range existing {
		out[k] = v
	}

	// texts[i] and vectors[i] are the per-commit slices being assembled;
	// toEmbed/refs collect only the texts that still need a fresh call.
	texts := make([][]string, len(newCommits))
	vectors := make([][][]float32, len(newCommits))
	var toEmbed []string
	var refs []toEmbedRef

	for ci, c := range newCommits {
		n := len(c.Message) + len(c.Summaries)
		texts[ci] = make([]string, 0, n)
		vectors[ci] = make([][]float32, 0, n)

		for _, m := range c.Message {
			texts[ci] = append(texts[ci], m)
			vectors[ci] = append(vectors[ci], nil)
			toEmbed = append(toEmbed, m)
			refs = append(refs, toEmbedRef{commitIdx: ci, textIdx: len(texts[ci]) - 1})
		}

		for fi, s := range c.Summaries {
			texts[ci] = append(texts[ci], s)
			path := ""
			if fi < len(c.Files) {
				path = c.Files[fi]
			}
			if cached, ok := fileCache[path]; ok && cached.Embedding != nil {
				vectors[ci] = append(vectors[ci], cached.Embedding)
				continue
			}
			vectors[ci] = append(vectors[ci], nil)
			toEmbed = append(toEmbed, s)
			refs = append(refs, toEmbedRef{commitIdx: ci, textIdx: len(texts[ci]) - 1})
		}
	}

	fresh, err := embeddings.EmbedMany(ctx, embedder, toEmbed)
	if err != nil {
		return nil, nil, err
	}
	for i, ref := range refs {
		vectors[ref.commitIdx][ref.textIdx] = fresh[i]
	}

	newOIDs := make([]string, 0, len(newCommits))
	for ci, c := range newCommits {
		out[c.OID] = store.CommitEmbeddingRecord{Messages: texts[ci], Embeddings: vectors[ci]}
		newOIDs = append(newOIDs, c.OID)
	}

	if err := store.ValidateCommitEmbeddings(out); err != nil {
		return nil, nil, err
	}

	return out, newOIDs, nil
}
