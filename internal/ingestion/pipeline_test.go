package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/graph"
	"github.com/Divas-Gupta30/docbrain/internal/processing"
	"github.com/Divas-Gupta30/docbrain/internal/storage"
)

type fakeStore struct {
	upserts []storage.Metadata
	err     error
}

func (f *fakeStore) Upsert(_ context.Context, meta storage.Metadata) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.upserts = append(f.upserts, meta)
	return "id", nil
}

func (f *fakeStore) byType(t graph.ElementType) []storage.Metadata {
	var out []storage.Metadata
	for _, m := range f.upserts {
		if m.ElementType == t {
			out = append(out, m)
		}
	}
	return out
}

type fakeTranscriber struct {
	err   error
	paths []string
}

func (f *fakeTranscriber) TranscribeWithVerification(_ context.Context, imagePath string) (processing.TranscriptionResult, error) {
	if f.err != nil {
		return processing.TranscriptionResult{}, f.err
	}
	f.paths = append(f.paths, imagePath)
	return processing.TranscriptionResult{
		Original:  "desc of " + filepath.Base(imagePath),
		Verified:  "desc of " + filepath.Base(imagePath),
		Corrected: false,
	}, nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestClassifyImage(t *testing.T) {
	tests := []struct {
		name     string
		wantType graph.ElementType
		wantPage int
		wantOK   bool
	}{
		{"figure_3_1.png", graph.ElementFigure, 3, true},
		{"table_12_2.png", graph.ElementTable, 12, true},
		{"figure_0_1.jpg", graph.ElementFigure, 0, true},
		{"diagram_3_1.png", "", 0, false},
		{"figure_abc_1.png", "", 0, false},
		{"figure.png", "", 0, false},
		{"notes.png", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elemType, page, ok := classifyImage(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantType, elemType)
				assert.Equal(t, tt.wantPage, page)
			}
		})
	}
}

func TestIngestFileStoresChunksAndSummary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "The melting point of iron is 1538 degrees Celsius.")

	store := &fakeStore{}
	p := NewPipeline(store, nil, zap.NewNop())

	stats, err := p.IngestFile(context.Background(), path, "")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TextChunks)
	assert.Equal(t, 2, stats.Stored) // one chunk plus the summary

	texts := store.byType(graph.ElementText)
	require.Len(t, texts, 1)
	assert.Equal(t, "notes.txt", texts[0].SourcePDF)
	assert.Equal(t, 1, texts[0].PageNumber)

	summaries := store.byType(graph.ElementGlobalSummary)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0, summaries[0].PageNumber)
	assert.Equal(t, processing.SummaryKeywords, summaries[0].Keywords)
	assert.Contains(t, summaries[0].ShadowText, "DOCUMENT PREVIEW")
}

func TestIngestFileChunksLongDocuments(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("sentence about chemistry and reactions ", 300)
	path := writeFile(t, dir, "long.txt", long)

	store := &fakeStore{}
	p := NewPipeline(store, nil, zap.NewNop())

	stats, err := p.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Greater(t, stats.TextChunks, 1)
	assert.Len(t, store.byType(graph.ElementText), stats.TextChunks)
}

func TestIngestImagesClassifiesAndStores(t *testing.T) {
	imgDir := t.TempDir()
	writeFile(t, imgDir, "figure_2_1.png", "png")
	writeFile(t, imgDir, "table_5_1.png", "png")
	writeFile(t, imgDir, "random.png", "png") // unclassifiable, skipped

	store := &fakeStore{}
	tr := &fakeTranscriber{}
	p := NewPipeline(store, tr, zap.NewNop())

	stats, err := p.IngestImages(context.Background(), imgDir, "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Figures)
	assert.Equal(t, 1, stats.Tables)
	assert.Len(t, tr.paths, 2)

	figures := store.byType(graph.ElementFigure)
	require.Len(t, figures, 1)
	assert.Equal(t, 2, figures[0].PageNumber)
	assert.NotEmpty(t, figures[0].OriginalImagePath)
	assert.Equal(t, "doc.pdf", figures[0].SourcePDF)

	tables := store.byType(graph.ElementTable)
	require.Len(t, tables, 1)
	assert.Equal(t, 5, tables[0].PageNumber)
}

func TestIngestImagesWithoutTranscriberSkips(t *testing.T) {
	imgDir := t.TempDir()
	writeFile(t, imgDir, "figure_1_1.png", "png")

	store := &fakeStore{}
	p := NewPipeline(store, nil, zap.NewNop())

	stats, err := p.IngestImages(context.Background(), imgDir, "doc.pdf")
	require.NoError(t, err)
	assert.Zero(t, stats.Stored)
	assert.Empty(t, store.upserts)
}

func TestIngestImagesTranscriptionFailureContinues(t *testing.T) {
	imgDir := t.TempDir()
	writeFile(t, imgDir, "figure_1_1.png", "png")

	store := &fakeStore{}
	tr := &fakeTranscriber{err: errors.New("vision model down")}
	p := NewPipeline(store, tr, zap.NewNop())

	stats, err := p.IngestImages(context.Background(), imgDir, "doc.pdf")
	require.NoError(t, err)
	assert.Zero(t, stats.Stored)
}

func TestIngestImagesMissingDirIsNoop(t *testing.T) {
	p := NewPipeline(&fakeStore{}, &fakeTranscriber{}, zap.NewNop())
	stats, err := p.IngestImages(context.Background(), "/nonexistent/dir", "doc.pdf")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalElements)
}

func TestIngestFileStoreFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "some content")

	p := NewPipeline(&fakeStore{err: errors.New("db down")}, nil, zap.NewNop())
	_, err := p.IngestFile(context.Background(), path, "")
	require.Error(t, err)
}

func TestIngestFileReportsProgress(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "short content")

	p := NewPipeline(&fakeStore{}, nil, zap.NewNop())
	var stages []string
	p.OnProgress(func(stage string, done, total int) {
		stages = append(stages, stage)
	})

	_, err := p.IngestFile(context.Background(), path, "")
	require.NoError(t, err)
	assert.Contains(t, stages, "text")
}
