package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/graph"
	"github.com/Divas-Gupta30/docbrain/internal/processing"
	"github.com/Divas-Gupta30/docbrain/internal/storage"
)

// ElementStore persists one indexable element. Satisfied by *storage.Store.
type ElementStore interface {
	Upsert(ctx context.Context, meta storage.Metadata) (string, error)
}

// ImageTranscriber turns a table or figure image into searchable shadow text.
// Satisfied by *processing.Transcriber.
type ImageTranscriber interface {
	TranscribeWithVerification(ctx context.Context, imagePath string) (processing.TranscriptionResult, error)
}

// Stats summarises one ingestion run.
type Stats struct {
	TotalElements int `json:"total_elements"`
	TextChunks    int `json:"text_chunks"`
	Tables        int `json:"tables"`
	Figures       int `json:"figures"`
	Corrections   int `json:"corrections"`
	Stored        int `json:"stored"`
}

// ProgressFunc is called as the pipeline advances. done and total count
// elements within the named stage.
type ProgressFunc func(stage string, done, total int)

// Pipeline converts a source document into stored elements: text chunks, a
// document-level summary, and transcribed table/figure images.
type Pipeline struct {
	store       ElementStore
	transcriber ImageTranscriber
	log         *zap.Logger
	progress    ProgressFunc
}

// NewPipeline creates a Pipeline. transcriber may be nil when no vision model
// is configured; image elements are then skipped.
func NewPipeline(store ElementStore, transcriber ImageTranscriber, log *zap.Logger) *Pipeline {
	return &Pipeline{store: store, transcriber: transcriber, log: log}
}

// OnProgress registers a progress callback.
func (p *Pipeline) OnProgress(fn ProgressFunc) {
	p.progress = fn
}

func (p *Pipeline) report(stage string, done, total int) {
	if p.progress != nil {
		p.progress(stage, done, total)
	}
}

// IngestFile processes one document: text extraction, chunking, a global
// summary element, and any extracted images found under imageDir.
func (p *Pipeline) IngestFile(ctx context.Context, path, imageDir string) (Stats, error) {
	var stats Stats
	source := filepath.Base(path)

	if IsImage(path) {
		// Standalone images are ingested as a single figure element.
		n, corrected, err := p.ingestImage(ctx, path, source, 1)
		stats.Figures = n
		stats.Stored += n
		stats.TotalElements += n
		if corrected {
			stats.Corrections++
		}
		return stats, err
	}

	text, err := ExtractText(path)
	if err != nil {
		return stats, fmt.Errorf("extracting %s: %w", source, err)
	}

	chunks := processing.ChunkText(text)
	stats.TextChunks = len(chunks)
	stats.TotalElements = len(chunks)
	for i, chunk := range chunks {
		_, err := p.store.Upsert(ctx, storage.Metadata{
			ShadowText:  chunk,
			ElementType: graph.ElementText,
			SourcePDF:   source,
			PageNumber:  i + 1,
		})
		if err != nil {
			return stats, fmt.Errorf("storing chunk %d of %s: %w", i+1, source, err)
		}
		stats.Stored++
		p.report("text", i+1, len(chunks))
	}

	// Document-level summary lives at page 0 with keywords so generic
	// questions surface it.
	if strings.TrimSpace(text) != "" {
		_, err := p.store.Upsert(ctx, storage.Metadata{
			ShadowText:  processing.PreviewSummary(text),
			ElementType: graph.ElementGlobalSummary,
			SourcePDF:   source,
			PageNumber:  0,
			Keywords:    processing.SummaryKeywords,
		})
		if err != nil {
			return stats, fmt.Errorf("storing summary of %s: %w", source, err)
		}
		stats.TotalElements++
		stats.Stored++
	}

	if imageDir != "" {
		imgStats, err := p.IngestImages(ctx, imageDir, source)
		stats.TotalElements += imgStats.TotalElements
		stats.Tables += imgStats.Tables
		stats.Figures += imgStats.Figures
		stats.Corrections += imgStats.Corrections
		stats.Stored += imgStats.Stored
		if err != nil {
			return stats, err
		}
	}

	p.log.Info("ingestion complete",
		zap.String("source", source),
		zap.Int("chunks", stats.TextChunks),
		zap.Int("tables", stats.Tables),
		zap.Int("figures", stats.Figures),
		zap.Int("stored", stats.Stored))
	return stats, nil
}

// IngestImages transcribes and stores every classified image in dir. Image
// files follow the <type>_<page>_<n>.png naming produced by extraction, e.g.
// figure_3_1.png. Unclassifiable files are skipped.
func (p *Pipeline) IngestImages(ctx context.Context, dir, source string) (Stats, error) {
	var stats Stats
	if p.transcriber == nil {
		p.log.Warn("no vision model configured, skipping image elements",
			zap.String("dir", dir))
		return stats, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading image dir: %w", err)
	}

	var images []string
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}

	for i, img := range images {
		elemType, page, ok := classifyImage(filepath.Base(img))
		if !ok {
			p.log.Debug("unclassified image skipped", zap.String("path", img))
			continue
		}

		n, corrected, err := p.ingestClassified(ctx, img, source, elemType, page)
		if err != nil {
			p.log.Warn("image transcription failed",
				zap.String("path", img), zap.Error(err))
			continue
		}
		stats.TotalElements += n
		stats.Stored += n
		if corrected {
			stats.Corrections++
		}
		switch elemType {
		case graph.ElementTable:
			stats.Tables += n
		case graph.ElementFigure:
			stats.Figures += n
		}
		p.report("images", i+1, len(images))
	}
	return stats, nil
}

func (p *Pipeline) ingestImage(ctx context.Context, path, source string, page int) (int, bool, error) {
	return p.ingestClassified(ctx, path, source, graph.ElementFigure, page)
}

func (p *Pipeline) ingestClassified(ctx context.Context, path, source string, elemType graph.ElementType, page int) (int, bool, error) {
	if p.transcriber == nil {
		return 0, false, nil
	}
	res, err := p.transcriber.TranscribeWithVerification(ctx, path)
	if err != nil {
		return 0, false, err
	}
	_, err = p.store.Upsert(ctx, storage.Metadata{
		ShadowText:        res.Verified,
		OriginalImagePath: path,
		ElementType:       elemType,
		SourcePDF:         source,
		PageNumber:        page,
	})
	if err != nil {
		return 0, false, fmt.Errorf("storing %s element: %w", elemType, err)
	}
	return 1, res.Corrected, nil
}

// classifyImage parses extracted image filenames of the form
// <type>_<page>_<n>.<ext> where <type> is "table" or "figure".
func classifyImage(name string) (graph.ElementType, int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return "", 0, false
	}

	var elemType graph.ElementType
	switch parts[0] {
	case "table":
		elemType = graph.ElementTable
	case "figure":
		elemType = graph.ElementFigure
	default:
		return "", 0, false
	}

	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 0 {
		return "", 0, false
	}
	return elemType, page, true
}
