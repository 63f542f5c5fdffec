package graph

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

const (
	// shadowTextGradeLimit bounds the document prefix sent to the grader, to
	// bound prompt cost.
	shadowTextGradeLimit = 2000

	gradeMaxTokens = 10
)

// queryIntent says whether a query would benefit from visual content.
type queryIntent int

const (
	intentText queryIntent = iota
	intentVisual
)

const intentPrompt = `You are classifying a search query for a document assistant.

Would VISUAL content (figures, diagrams, charts, images) materially help answer this query? Answer 'visual' for structural, spatial or diagrammatic questions, or when the query explicitly mentions a figure or image. Answer 'text' otherwise.

Query: %s

Answer ONLY 'visual' or 'text'.`

const graderPrompt = `You are a HIGH-RECALL relevance grader. Your goal is to NEVER miss relevant documents.

RULES:
1. If the document contains ANY keywords from the user question, answer 'yes'.
2. If the document is even REMOTELY related, answer 'yes'.
3. If you are unsure, answer 'yes'.
4. Only answer 'no' if the document is COMPLETELY unrelated.

User Query: %s

Document Content:
%s

Is this document relevant? Answer ONLY 'yes' or 'no'.`

const figureGraderPrompt = `You are a STRICT figure relevance grader for a document assistant.

A figure should only be shown when it directly and specifically illustrates the subject of the user's question. Answer 'no' for figures that are merely from the same document or loosely related.

User Query: %s

Figure Description:
%s

Does this figure directly and specifically illustrate the query's subject? Answer ONLY 'yes' or 'no'.`

// grade filters the candidate set down to the relevant subset. Policy order:
// generic-query fast path (accept everything, zero LLM calls), then a single
// visual-intent classification that sets the figure acceptance budget, then
// per-document binary grading with a high-recall policy for non-figures and a
// strict one-per-pass policy for figures. Grading-call failures never abort
// the pass: non-figures are accepted, figures rejected.
func (e *Engine) grade(ctx context.Context, st state) state {
	query := st.effectiveQuery()

	if isGenericQuery(query) {
		e.log.Info("generic query, accepting all documents",
			zap.String("query", query), zap.Int("count", len(st.documents)))
		accepted := make([]Document, len(st.documents))
		copy(accepted, st.documents)
		for i := range accepted {
			accepted[i].RelevanceScore = 1.0
		}
		st.relevant = accepted
		return st
	}

	figureBudget := 0
	if e.classifyIntent(ctx, query) == intentVisual {
		figureBudget = 1
	}

	var accepted []Document
	for _, doc := range st.documents {
		if doc.ElementType == ElementFigure {
			if figureBudget == 0 {
				e.log.Info("figure skipped", zap.String("id", doc.ID),
					zap.Int("page", doc.PageNumber))
				continue
			}
			ok, err := e.gradeOne(ctx, figureGraderPrompt, query, doc)
			if err != nil {
				// Fail-safe for figures is rejection: never surface an
				// unverified image.
				e.log.Warn("figure grading failed, rejecting",
					zap.String("id", doc.ID), zap.Error(err))
				continue
			}
			if ok {
				doc.RelevanceScore = 1.0
				accepted = append(accepted, doc)
				figureBudget--
			}
			continue
		}

		ok, err := e.gradeOne(ctx, graderPrompt, query, doc)
		if err != nil {
			// Fail-safe for non-figures is acceptance: favor recall over
			// silently starving the generator.
			e.log.Warn("grading failed, accepting document",
				zap.String("id", doc.ID), zap.Error(err))
			doc.RelevanceScore = 1.0
			accepted = append(accepted, doc)
			continue
		}
		if ok {
			doc.RelevanceScore = 1.0
			accepted = append(accepted, doc)
		}
	}

	e.log.Info("graded documents",
		zap.Int("relevant", len(accepted)), zap.Int("total", len(st.documents)))

	st.relevant = accepted
	return st
}

// classifyIntent runs one binary classification for the whole grading pass.
// Failure defaults to the non-visual branch and never aborts grading.
func (e *Engine) classifyIntent(ctx context.Context, query string) queryIntent {
	out, err := e.llm.Complete(ctx, llm.Request{
		Prompt:    fmt.Sprintf(intentPrompt, query),
		MaxTokens: gradeMaxTokens,
	})
	if err != nil {
		e.log.Warn("intent classification failed, assuming text", zap.Error(err))
		return intentText
	}
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(out)), "visual") {
		e.log.Info("visual intent detected", zap.String("query", query))
		return intentVisual
	}
	return intentText
}

func (e *Engine) gradeOne(ctx context.Context, promptFormat, query string, doc Document) (bool, error) {
	text := doc.ShadowText
	if len(text) > shadowTextGradeLimit {
		// Back off to a rune boundary so the prompt never ends with a split
		// multi-byte sequence.
		cut := shadowTextGradeLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	out, err := e.llm.Complete(ctx, llm.Request{
		Prompt:    fmt.Sprintf(promptFormat, query, text),
		MaxTokens: gradeMaxTokens,
	})
	if err != nil {
		return false, err
	}
	grade := strings.ToLower(strings.TrimSpace(out))
	relevant := strings.HasPrefix(grade, "yes")

	e.log.Info("graded document",
		zap.String("id", doc.ID),
		zap.String("type", string(doc.ElementType)),
		zap.Int("page", doc.PageNumber),
		zap.Bool("relevant", relevant))
	return relevant, nil
}
