package processing

import (
	"strings"
	"unicode/utf8"
)

const previewLength = 1500

// SummaryKeywords are stored alongside the global summary element so generic
// document-level questions rank it highly.
const SummaryKeywords = "summary, overview, what is this, about, describe, explain"

// PreviewSummary builds a local document-level summary from the leading text
// of the document. No model call involved; the preview is cheap and good
// enough to anchor generic queries.
func PreviewSummary(fullText string) string {
	preview := strings.TrimSpace(fullText)
	if len(preview) > previewLength {
		cut := previewLength
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = strings.TrimSpace(preview[:cut])
	}
	return "DOCUMENT PREVIEW / EXECUTIVE SUMMARY:\n" + preview
}
