package graph

import (
	"regexp"
	"strings"
)

// greetingPatterns match the entire normalized query (trailing punctuation
// allowed), never substrings. First match wins.
var greetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(hi|hey|hello|hola|sup|yo)\s*[!.,?]*$`),
	regexp.MustCompile(`^good\s*(morning|afternoon|evening)\s*[!.,?]*$`),
	regexp.MustCompile(`^what'?s\s*up\s*[!.,?]*$`),
	regexp.MustCompile(`^how\s*are\s*you\s*[!.,?]*$`),
	regexp.MustCompile(`^help\s*[!.,?]*$`),
	regexp.MustCompile(`^(thanks|thank\s*you)\s*[!.,?]*$`),
}

// isGreeting reports whether the query is small talk that should short-circuit
// the RAG cycle.
func isGreeting(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, p := range greetingPatterns {
		if p.MatchString(q) {
			return true
		}
	}
	return false
}

// genericKeywords mark broad document-level questions. Queries containing any
// of these accept every retrieved document without per-document grading:
// broad queries should maximize recall rather than risk false negatives from
// a strict grader.
var genericKeywords = []string{
	"summary", "summarize", "what is this", "about", "describe",
	"explain", "overview", "tell me", "what does", "content",
}

func isGenericQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range genericKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
