package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

const (
	rewriteMaxTokens   = 100
	rewriteTemperature = 0.5
)

const rewritePrompt = `You are a query rewriter for a document retrieval system.

The original query did not retrieve relevant documents. Rewrite it to be:
1. More specific with key terms
2. Alternative phrasing that might match document content
3. Expanded with related concepts

Original Query: %s

Rewritten Query (output ONLY the new query, nothing else):`

// rewrite produces an alternative phrasing of the original query. Always
// rewrites from the original, not a previous rewrite, so phrasing does not
// drift across retries. The retry counter advances even when the LLM call
// fails (the fallback re-runs the original query), which keeps the loop
// bounded under persistent failure.
func (e *Engine) rewrite(ctx context.Context, st state) state {
	e.log.Info("rewriting query",
		zap.Int("attempt", st.retryCount+1), zap.Int("max", MaxRetries))

	out, err := e.llm.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(rewritePrompt, st.query),
		MaxTokens:   rewriteMaxTokens,
		Temperature: rewriteTemperature,
	})
	if err != nil {
		e.log.Warn("rewrite failed, retrying with original query", zap.Error(err))
		out = st.query
	}

	rewritten := strings.TrimSpace(out)
	e.log.Info("rewrote query",
		zap.String("from", st.query), zap.String("to", rewritten))

	st.rewrittenQuery = rewritten
	st.retryCount++
	return st
}
