package graph

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

const (
	generateMaxTokens   = 2048
	generateTemperature = 0.2
)

// GenerationFailurePrefix starts the in-band answer produced when the
// generation call itself fails. Callers use it to tell transient failures
// apart from real answers, e.g. to keep them out of the answer cache.
const GenerationFailurePrefix = "Error generating response: "

// RefusalMessage is the exact answer returned when no document survives
// grading: the system only answers from ingested document content.
const RefusalMessage = "I can only answer questions about the content of the uploaded document, and I couldn't find anything in it related to your question. Please try asking about the document itself."

// GreetingResponse is the canned answer for greeting-like input.
const GreetingResponse = "Hello! I am ready to help. Please ask me about your document."

const generatePrompt = `You are an assistant answering questions strictly from the provided document context.

Context Documents:
%s

User Question: %s

Instructions:
1. Answer ONLY from the context documents above. Never use outside knowledge.
2. If a specific part of the question is not covered by the context, say "I don't have information about that in the document." for that part.
3. Use short sections with bullet points where they help, and keep paragraphs under four sentences.
4. Do not mention documents, fragments, or context mechanics in your answer.
5. End with exactly one short follow-up question the user might want to ask next.

Answer:`

// directResponse terminates a greeting turn without touching the retriever.
func (e *Engine) directResponse(st state) state {
	st.generation = GreetingResponse
	st.documents = nil
	st.relevant = nil
	return st
}

// generate synthesizes the final answer from the accepted documents, or
// refuses outright when none survived grading. LLM failure yields a visible
// error string, never a missing answer.
func (e *Engine) generate(ctx context.Context, st state) state {
	if len(st.relevant) == 0 {
		e.log.Info("no relevant documents, refusing")
		st.generation = RefusalMessage
		return st
	}

	var b strings.Builder
	for i, doc := range st.relevant {
		fmt.Fprintf(&b, "--- Document %d (%s, Page %d) ---\n%s\n\n",
			i+1, doc.ElementType, doc.PageNumber, doc.ShadowText)
	}
	req := llm.Request{
		Prompt:      fmt.Sprintf(generatePrompt, b.String(), st.effectiveQuery()),
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	}

	e.log.Info("generating answer", zap.Int("documents", len(st.relevant)))

	var out string
	var err error
	if v, ok := e.llm.(llm.Vision); ok {
		if images := e.loadImages(st.relevant); len(images) > 0 {
			out, err = v.CompleteWithImages(ctx, req, images)
		} else {
			out, err = e.llm.Complete(ctx, req)
		}
	} else {
		out, err = e.llm.Complete(ctx, req)
	}
	if err != nil {
		e.log.Error("generation failed", zap.Error(err))
		st.generation = GenerationFailurePrefix + err.Error()
		return st
	}

	st.generation = out
	return st
}

// loadImages reads the raw images behind accepted image-backed documents for
// multimodal generation. Unreadable images are skipped, not fatal.
func (e *Engine) loadImages(docs []Document) []llm.Image {
	var images []llm.Image
	for _, doc := range docs {
		if doc.OriginalImagePath == "" {
			continue
		}
		data, err := os.ReadFile(doc.OriginalImagePath)
		if err != nil {
			e.log.Warn("could not load image",
				zap.String("path", doc.OriginalImagePath), zap.Error(err))
			continue
		}
		images = append(images, llm.Image{
			Data:     data,
			MIMEType: llm.MIMETypeForPath(doc.OriginalImagePath),
		})
	}
	return images
}
