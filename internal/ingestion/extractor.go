// Package ingestion loads source documents (local files or Google Drive) and
// extracts their text and image elements for indexing.
package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFileType is returned for extensions the extractor cannot
// handle.
var ErrUnsupportedFileType = errors.New("unsupported file type")

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// IsImage reports whether the path points at a standalone image, which is
// ingested as a figure element rather than extracted text.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// ExtractText returns the textual content of a document, routing by
// extension: plain files are read directly, PDFs go through the text layer
// with an OCR fallback for scanned documents, images go straight to OCR.
func ExtractText(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ".pdf":
		text, err := ExtractTextFromPDF(path)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		// No text layer; assume a scanned document.
		return ExtractTextWithOCR(path)
	case ".png", ".jpg", ".jpeg":
		return ExtractTextWithOCR(path)
	default:
		return "", ErrUnsupportedFileType
	}
}
