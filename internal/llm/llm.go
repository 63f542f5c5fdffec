// Package llm provides single-turn completion clients for the RAG pipeline.
//
// Two backends are implemented: Groq (OpenAI-compatible chat completions,
// used for grading, rewriting and generation) and Gemini (used for image
// transcription and, optionally, multimodal generation).
package llm

import (
	"context"
	"path/filepath"
	"strings"
)

// Request describes one forced single-turn completion. Grading calls use a
// short MaxTokens budget and zero temperature; synthesis calls use larger
// budgets.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Image is a raw image attachment for multimodal calls.
type Image struct {
	Data     []byte
	MIMEType string
}

// Client is a single-turn text completion backend. Failures are returned as
// errors; callers decide whether a failure is fatal or degrades to a default.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Vision is implemented by clients that accept image attachments alongside
// the prompt.
type Vision interface {
	CompleteWithImages(ctx context.Context, req Request, images []Image) (string, error)
}

// MIMETypeForPath maps an image file extension to its MIME type, defaulting
// to PNG for unknown extensions.
func MIMETypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
