package ingestion

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ExtractTextWithOCR runs OCR over an image or a scanned PDF. PDFs are first
// rendered to PNGs with pdftoppm (poppler must be installed), one page at a
// time.
func ExtractTextWithOCR(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return runTesseract(path)
	}

	tmpPrefix := filepath.Join(os.TempDir(), "docbrain_ocr")
	if err := exec.Command("pdftoppm", "-png", path, tmpPrefix).Run(); err != nil {
		return "", fmt.Errorf("pdftoppm convert failed: %w", err)
	}

	pages, err := filepath.Glob(tmpPrefix + "-*.png")
	if err != nil {
		return "", err
	}
	defer func() {
		for _, p := range pages {
			os.Remove(p)
		}
	}()

	var combined strings.Builder
	for _, page := range pages {
		text, err := runTesseract(page)
		if err != nil {
			continue
		}
		combined.WriteString(text)
		combined.WriteString("\n")
	}
	return strings.TrimSpace(combined.String()), nil
}

func runTesseract(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImage(imgPath); err != nil {
		return "", fmt.Errorf("setting ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running ocr: %w", err)
	}
	return strings.TrimSpace(text), nil
}
