// Package storage persists document elements in Postgres with pgvector and
// serves similarity search for the graph engine.
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/graph"
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Metadata describes one element to store. ShadowText is the indexable
// textual representation; for image-backed elements OriginalImagePath points
// at the extracted image on disk.
type Metadata struct {
	ShadowText        string
	OriginalImagePath string
	ElementType       graph.ElementType
	SourcePDF         string
	PageNumber        int
	Keywords          string
}

// Store holds the connection pool and the embedder used for both upserts and
// query embedding. Safe for concurrent use.
type Store struct {
	pool     *pgxpool.Pool
	embedder Embedder
	log      *zap.Logger
}

// New connects to Postgres and returns a ready Store.
func New(ctx context.Context, databaseURL string, embedder Embedder, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{pool: pool, embedder: embedder, log: log}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS elements (
		id UUID PRIMARY KEY,
		shadow_text TEXT NOT NULL,
		original_image_path TEXT,
		element_type TEXT NOT NULL,
		source_pdf TEXT NOT NULL,
		page_number INT NOT NULL,
		keywords TEXT,
		embedding vector(768) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS elements_embedding_idx
		ON elements USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
}

// EnsureSchema creates the elements table and vector index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}

// Upsert embeds the shadow text and inserts the element, returning its ID.
func (s *Store) Upsert(ctx context.Context, meta Metadata) (string, error) {
	vec, err := s.embedder.Embed(ctx, meta.ShadowText)
	if err != nil {
		return "", fmt.Errorf("embedding shadow text: %w", err)
	}

	id := uuid.NewString()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO elements (id, shadow_text, original_image_path, element_type, source_pdf, page_number, keywords, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, meta.ShadowText, meta.OriginalImagePath, string(meta.ElementType),
		meta.SourcePDF, meta.PageNumber, meta.Keywords, pgvector.NewVector(vec))
	if err != nil {
		return "", fmt.Errorf("inserting element: %w", err)
	}

	s.log.Info("stored element",
		zap.String("id", id),
		zap.String("type", string(meta.ElementType)),
		zap.Int("page", meta.PageNumber))
	return id, nil
}

// Search embeds the query and returns the most similar elements by cosine
// distance, scores in [0, 1]. Satisfies graph.Retriever.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]graph.Document, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, shadow_text, COALESCE(original_image_path, ''), element_type,
		        source_pdf, page_number, 1 - (embedding <=> $1) AS score
		 FROM elements
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("searching elements: %w", err)
	}
	defer rows.Close()

	var docs []graph.Document
	for rows.Next() {
		var d graph.Document
		var elementType string
		if err := rows.Scan(&d.ID, &d.ShadowText, &d.OriginalImagePath,
			&elementType, &d.SourcePDF, &d.PageNumber, &d.RelevanceScore); err != nil {
			return nil, fmt.Errorf("scanning element: %w", err)
		}
		d.ElementType = graph.ElementType(elementType)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading elements: %w", err)
	}
	return docs, nil
}

// Count returns the number of stored elements.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM elements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting elements: %w", err)
	}
	return n, nil
}

// Reset removes every stored element.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE elements`); err != nil {
		return fmt.Errorf("resetting elements: %w", err)
	}
	s.log.Info("element store reset")
	return nil
}
