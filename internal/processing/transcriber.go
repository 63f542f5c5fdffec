package processing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

const transcriptionPrompt = `Analyze this image and provide a DETAILED description for document retrieval.

Your description should include:
1. **Type**: What kind of visual is this? (diagram, chart, table, photograph, illustration, anatomical figure, etc.)
2. **Main Subject**: What is the primary topic or content shown?
3. **Key Elements**: List ALL labeled components, structures, or data points visible
4. **Relationships**: Describe how elements relate to each other (connections, layers, hierarchies)
5. **Text/Labels**: Transcribe ALL visible text, labels, captions, and annotations
6. **Context**: What concept or information does this visual explain?

For tables: Use proper Markdown table syntax with headers.
For diagrams: Describe the structure and all labeled parts in detail.

Be EXHAUSTIVE - your description will be used for semantic search to find this image when users ask questions about its content.`

const verificationPrompt = `Verify this description against the image and ensure it's comprehensive for retrieval.

DESCRIPTION TO VERIFY:
%s

Instructions:
1. Check if ALL visible elements, labels, and structures are mentioned.
2. Ensure technical terms and proper names are correctly spelled.
3. Add any missing details that would help users find this image when searching.
4. If there are errors or omissions, provide the CORRECTED version.
5. If the description is complete, return it unchanged.

Return ONLY the final description (corrected if needed), no explanations.`

const transcribeMaxTokens = 2048

// TranscriptionResult is the outcome of the two-pass transcription.
type TranscriptionResult struct {
	Original  string
	Verified  string
	Corrected bool
}

// Transcriber turns table and figure images into shadow text using a vision
// model, with a second verification pass that can correct the first draft.
type Transcriber struct {
	vision llm.Vision
	log    *zap.Logger
}

// NewTranscriber creates a Transcriber.
func NewTranscriber(vision llm.Vision, log *zap.Logger) *Transcriber {
	return &Transcriber{vision: vision, log: log}
}

func (t *Transcriber) describe(ctx context.Context, imagePath, prompt string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	out, err := t.vision.CompleteWithImages(ctx,
		llm.Request{Prompt: prompt, MaxTokens: transcribeMaxTokens},
		[]llm.Image{{Data: data, MIMEType: llm.MIMETypeForPath(imagePath)}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Transcribe produces the initial description of an image.
func (t *Transcriber) Transcribe(ctx context.Context, imagePath string) (string, error) {
	t.log.Info("transcribing image", zap.String("path", imagePath))
	return t.describe(ctx, imagePath, transcriptionPrompt)
}

// Verify checks a description against the image and returns the corrected
// version (or the input unchanged).
func (t *Transcriber) Verify(ctx context.Context, imagePath, description string) (string, error) {
	t.log.Info("verifying transcription", zap.String("path", imagePath))
	return t.describe(ctx, imagePath, fmt.Sprintf(verificationPrompt, description))
}

// TranscribeWithVerification runs both passes and reports whether the
// verification pass changed the draft.
func (t *Transcriber) TranscribeWithVerification(ctx context.Context, imagePath string) (TranscriptionResult, error) {
	original, err := t.Transcribe(ctx, imagePath)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("transcription: %w", err)
	}
	verified, err := t.Verify(ctx, imagePath, original)
	if err != nil {
		return TranscriptionResult{}, fmt.Errorf("verification: %w", err)
	}

	corrected := original != verified
	if corrected {
		t.log.Info("transcription corrected", zap.String("path", imagePath))
	}
	return TranscriptionResult{
		Original:  original,
		Verified:  verified,
		Corrected: corrected,
	}, nil
}
