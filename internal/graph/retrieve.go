package graph

import (
	"context"

	"go.uber.org/zap"
)

// retrieve replaces the candidate set with a fresh similarity search for the
// effective query. Retriever failure degrades to zero candidates so the cycle
// keeps moving; it is never surfaced to the caller mid-turn.
func (e *Engine) retrieve(ctx context.Context, st state) state {
	query := st.effectiveQuery()

	docs, err := e.retriever.Search(ctx, query, TopK)
	if err != nil {
		e.log.Warn("retrieval failed, continuing with zero documents",
			zap.String("query", query), zap.Error(err))
		docs = nil
	}

	// Dedup by ID within the batch, first occurrence wins. Missing optional
	// fields arrive as zero values, which downstream stages tolerate.
	seen := make(map[string]struct{}, len(docs))
	deduped := docs[:0:0]
	for _, d := range docs {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		deduped = append(deduped, d)
	}

	e.log.Info("retrieved documents",
		zap.String("query", query), zap.Int("count", len(deduped)))

	st.documents = deduped
	st.relevant = nil
	return st
}
