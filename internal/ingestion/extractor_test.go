package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("figure_1_1.png"))
	assert.True(t, IsImage("photo.JPG"))
	assert.True(t, IsImage("scan.jpeg"))
	assert.False(t, IsImage("doc.pdf"))
	assert.False(t, IsImage("notes.txt"))
}

func TestExtractTextPlainFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.md"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("plain content"), 0o644))

		text, err := ExtractText(path)
		require.NoError(t, err)
		assert.Equal(t, "plain content", text)
	}
}

func TestExtractTextUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip"), 0o644))

	_, err := ExtractText(path)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestLoadLocalFilesFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	for _, name := range []string{"doc.pdf", "notes.txt", "readme.md", "pic.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.exe"), []byte("x"), 0o644))

	files, err := LoadLocalFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 5)
	for _, f := range files {
		assert.NotContains(t, f, "skip.exe")
	}
}

func TestLoadLocalFilesMissingRoot(t *testing.T) {
	_, err := LoadLocalFiles("/does/not/exist")
	require.Error(t, err)
}
