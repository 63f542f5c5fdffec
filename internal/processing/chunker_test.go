package processing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText(""))
	assert.Nil(t, ChunkText("   \n\t  "))
}

func TestChunkTextShortDocumentStaysWhole(t *testing.T) {
	text := strings.Repeat("short document. ", 100) // ~1600 chars, under threshold
	chunks := ChunkText(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(text), chunks[0])
}

func TestChunkTextLongDocumentSplits(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 200) // ~9000 chars
	chunks := ChunkText(text)

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), chunkSize, "chunk %d too large", i)
		assert.NotEmpty(t, c)
	}
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("overlap sentence fragment here ", 300)
	chunks := ChunkText(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share content: each chunk starts inside the
	// previous one.
	for i := 1; i < len(chunks); i++ {
		assert.Contains(t, chunks[i-1], chunks[i][:20], "chunk %d does not overlap", i)
	}
}

func TestChunkTextBreaksOnWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 2000) // 10000 chars of clean word boundaries
	chunks := ChunkText(text)
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.False(t, strings.HasPrefix(c, "ord"), "chunk starts mid-word: %q", c[:10])
	}
}
