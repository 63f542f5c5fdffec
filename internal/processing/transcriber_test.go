package processing

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

type fakeVision struct {
	responses []string
	calls     []llm.Request
	images    [][]llm.Image
}

func (f *fakeVision) CompleteWithImages(_ context.Context, req llm.Request, images []llm.Image) (string, error) {
	f.calls = append(f.calls, req)
	f.images = append(f.images, images)
	out := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return out, nil
}

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "figure_1_1.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o644))
	return path
}

func TestTranscribeWithVerificationUnchanged(t *testing.T) {
	vision := &fakeVision{responses: []string{"a diagram of a cell"}}
	tr := NewTranscriber(vision, zap.NewNop())

	res, err := tr.TranscribeWithVerification(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	assert.Equal(t, "a diagram of a cell", res.Original)
	assert.Equal(t, "a diagram of a cell", res.Verified)
	assert.False(t, res.Corrected)
	require.Len(t, vision.calls, 2)
}

func TestTranscribeWithVerificationCorrected(t *testing.T) {
	vision := &fakeVision{responses: []string{
		"a diagram of a cel",
		"a diagram of a cell with labeled organelles",
	}}
	tr := NewTranscriber(vision, zap.NewNop())

	res, err := tr.TranscribeWithVerification(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	assert.True(t, res.Corrected)
	assert.Equal(t, "a diagram of a cell with labeled organelles", res.Verified)
}

func TestTranscribeAttachesImageBytes(t *testing.T) {
	vision := &fakeVision{responses: []string{"description"}}
	tr := NewTranscriber(vision, zap.NewNop())

	_, err := tr.Transcribe(context.Background(), writeTestImage(t))
	require.NoError(t, err)

	require.Len(t, vision.images, 1)
	require.Len(t, vision.images[0], 1)
	assert.Equal(t, "image/png", vision.images[0][0].MIMEType)
	assert.NotEmpty(t, vision.images[0][0].Data)
}

func TestVerificationPromptEmbedsDraft(t *testing.T) {
	vision := &fakeVision{responses: []string{"final"}}
	tr := NewTranscriber(vision, zap.NewNop())

	_, err := tr.Verify(context.Background(), writeTestImage(t), "draft description")
	require.NoError(t, err)

	require.Len(t, vision.calls, 1)
	assert.Contains(t, vision.calls[0].Prompt, "draft description")
}

func TestPreviewSummaryTruncates(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'a'
	}
	out := PreviewSummary(string(long))

	assert.Contains(t, out, "DOCUMENT PREVIEW / EXECUTIVE SUMMARY:")
	assert.LessOrEqual(t, len(out), previewLength+len("DOCUMENT PREVIEW / EXECUTIVE SUMMARY:\n"))
}

func TestPreviewSummaryKeepsRuneBoundary(t *testing.T) {
	// One leading ASCII byte pushes the 3-byte runes off the byte limit, so
	// the cut falls mid-rune.
	out := PreviewSummary("a" + strings.Repeat("€", 1000))

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "€"))
}
