// Package graph implements the retrieve-grade-generate-rewrite control loop
// over ingested document elements.
//
// One user turn runs a small state machine: the entry router short-circuits
// greetings to a canned response; everything else enters the RAG cycle
// retrieve -> grade -> {rewrite -> retrieve | generate}. The rewrite branch is
// taken only while no document has passed grading and retry budget remains,
// so the cycle executes at most MaxRetries+1 retrieval passes before being
// forced into generation.
package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/llm"
)

const (
	// MaxRetries bounds query rewrites per turn. The grade->rewrite guard
	// requires retryCount < MaxRetries and every rewrite increments the
	// counter, which is what terminates the cycle.
	MaxRetries = 2

	// TopK is the retrieval result limit per pass.
	TopK = 10
)

// Retriever is the similarity-search collaborator. Implementations must be
// safe for concurrent use; the engine never calls Search concurrently within
// a single turn.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]Document, error)
}

// RetrieverFunc adapts a function to the Retriever interface.
type RetrieverFunc func(ctx context.Context, query string, limit int) ([]Document, error)

// Search calls f.
func (f RetrieverFunc) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	return f(ctx, query, limit)
}

// Engine orchestrates one turn of the RAG loop. Construct it once per process
// and share it across requests; each Run gets its own state.
type Engine struct {
	retriever Retriever
	llm       llm.Client
	log       *zap.Logger
}

// New creates an Engine with its collaborators.
func New(retriever Retriever, client llm.Client, log *zap.Logger) *Engine {
	return &Engine{
		retriever: retriever,
		llm:       client,
		log:       log,
	}
}

type step int

const (
	stepEntry step = iota
	stepDirectResponse
	stepRetrieve
	stepGrade
	stepRewrite
	stepGenerate
)

// Run executes the state machine for one query. It always produces a textual
// answer: collaborator failures degrade at each stage boundary instead of
// propagating out.
func (e *Engine) Run(ctx context.Context, query string) Result {
	st := state{query: query}
	next := stepEntry

	for {
		switch next {
		case stepEntry:
			if isGreeting(st.query) {
				e.log.Info("greeting detected", zap.String("query", st.query))
				next = stepDirectResponse
			} else {
				e.log.Info("rag query", zap.String("query", st.query))
				next = stepRetrieve
			}

		case stepDirectResponse:
			st = e.directResponse(st)
			return st.result()

		case stepRetrieve:
			st = e.retrieve(ctx, st)
			next = stepGrade

		case stepGrade:
			st = e.grade(ctx, st)
			// Guard order matters: rewrite only with zero relevant documents
			// and remaining budget, otherwise generate.
			if len(st.relevant) == 0 && st.retryCount < MaxRetries {
				next = stepRewrite
			} else {
				next = stepGenerate
			}

		case stepRewrite:
			st = e.rewrite(ctx, st)
			next = stepRetrieve

		case stepGenerate:
			st = e.generate(ctx, st)
			return st.result()
		}
	}
}
