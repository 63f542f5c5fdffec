package graph

import "strings"

// ElementType classifies a stored document element.
type ElementType string

const (
	ElementText          ElementType = "text"
	ElementTable         ElementType = "table"
	ElementFigure        ElementType = "figure"
	ElementGlobalSummary ElementType = "global_summary"
)

// Document is one candidate retrieval result. ShadowText holds the textual
// representation used for matching and as LLM input; for image-backed
// elements it is a generated description and OriginalImagePath points at the
// source image. RelevanceScore carries the similarity score after retrieval
// and is overwritten with 1.0 when the grader accepts the document.
type Document struct {
	ID                string      `json:"id"`
	ShadowText        string      `json:"shadow_text"`
	OriginalImagePath string      `json:"original_image_path,omitempty"`
	ElementType       ElementType `json:"element_type"`
	SourcePDF         string      `json:"source_pdf"`
	PageNumber        int         `json:"page_number"`
	RelevanceScore    float64     `json:"relevance_score"`
}

// state is the single context threaded through one Run. Stages take a state
// value and return an updated one; nothing is shared across invocations.
type state struct {
	query          string
	rewrittenQuery string
	documents      []Document
	relevant       []Document
	generation     string
	retryCount     int
}

// effectiveQuery is the rewritten query once one exists, else the original.
func (s state) effectiveQuery() string {
	if s.rewrittenQuery != "" {
		return s.rewrittenQuery
	}
	return s.query
}

func (s state) result() Result {
	relevant := s.relevant
	if relevant == nil {
		relevant = []Document{}
	}
	res := Result{
		Generation:        s.generation,
		RelevantDocuments: relevant,
		RetryCount:        s.retryCount,
	}
	if s.rewrittenQuery != "" {
		rewritten := s.rewrittenQuery
		res.RewrittenQuery = &rewritten
	}
	return res
}

// Result is the outcome of one user turn. RewrittenQuery is nil when the
// rewrite stage never ran.
type Result struct {
	Generation        string     `json:"generation"`
	RelevantDocuments []Document `json:"relevant_documents"`
	RewrittenQuery    *string    `json:"rewritten_query"`
	RetryCount        int        `json:"retry_count"`
}

// Errored reports whether the generation is the in-band failure answer
// rather than a real response.
func (r Result) Errored() bool {
	return strings.HasPrefix(r.Generation, GenerationFailurePrefix)
}
