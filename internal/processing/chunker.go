// Package processing turns extracted document content into indexable
// elements: chunking, embeddings and image transcription.
package processing

import "strings"

const (
	chunkSize    = 1000
	chunkOverlap = 200

	// Documents below this size stay whole; splitting short documents only
	// hurts coherence.
	singleChunkThreshold = 4000

	// How far to scan backwards for a whitespace break so chunks do not end
	// mid-word.
	boundaryScan = 50
)

// ChunkText splits text into overlapping character chunks. Small documents
// come back as a single chunk.
func ChunkText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) < singleChunkThreshold {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			for i := 0; i < boundaryScan && i < end-start; i++ {
				if c := text[end-i]; c == ' ' || c == '\n' || c == '\t' {
					end -= i
					break
				}
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		start = end - chunkOverlap
		if start < 0 {
			start = 0
		}
		if start >= len(text)-chunkOverlap {
			break
		}
	}
	return chunks
}
