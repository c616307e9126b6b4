// Package postgres implements internal/store.Store against Postgres
// with the pgvector extension, covering the full schema of a memory
// service: documents, chunks, memories, memory_sources, container_tags,
// user_profiles, and a momo_meta key/value table.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists every entity the core operates on.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
}

// New connects to Postgres and ensures the schema exists.
func New(ctx context.Context, dsn string, maxConns int, dimension int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	s := &Store{pool: pool, dimension: dimension}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) ensureSchema(ctx context.Context) error {
	const statements = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	custom_id TEXT,
	connection_id TEXT,
	title TEXT,
	content TEXT,
	summary TEXT,
	url TEXT,
	source TEXT,
	doc_type TEXT NOT NULL DEFAULT 'text',
	status TEXT NOT NULL DEFAULT 'queued',
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	container_tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	chunk_count INT NOT NULL DEFAULT 0,
	token_count INT,
	word_count INT,
	error_message TEXT,
	should_llm_filter BOOLEAN NOT NULL DEFAULT false,
	filter_prompt TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS documents_created_at_idx ON documents (created_at);
CREATE INDEX IF NOT EXISTS documents_status_idx ON documents (status);

CREATE TABLE IF NOT EXISTS chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	embedded_content TEXT NOT NULL,
	position INT NOT NULL,
	token_count INT,
	embedding vector(%[1]d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS chunks_document_id_idx ON chunks (document_id);

DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema() AND indexname = 'chunks_embedding_idx'
	) THEN
		EXECUTE 'CREATE INDEX chunks_embedding_idx ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);';
	END IF;
END
$$;

CREATE TABLE IF NOT EXISTS memories (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	space_id TEXT NOT NULL DEFAULT '',
	container_tag TEXT,
	memory_type TEXT NOT NULL DEFAULT 'fact',
	version INT NOT NULL DEFAULT 1,
	is_latest BOOLEAN NOT NULL DEFAULT true,
	parent_memory_id TEXT,
	root_memory_id TEXT NOT NULL,
	memory_relations JSONB NOT NULL DEFAULT '{}'::jsonb,
	source_count INT NOT NULL DEFAULT 1,
	is_inference BOOLEAN NOT NULL DEFAULT false,
	is_forgotten BOOLEAN NOT NULL DEFAULT false,
	is_static BOOLEAN NOT NULL DEFAULT false,
	forget_after TIMESTAMPTZ,
	forget_reason TEXT,
	last_accessed TIMESTAMPTZ,
	confidence DOUBLE PRECISION,
	metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	embedding vector(%[1]d),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS memories_tag_latest_forgotten_idx
	ON memories (container_tag, is_latest, is_forgotten);
CREATE INDEX IF NOT EXISTS memories_forget_after_idx
	ON memories (forget_after) WHERE forget_after IS NOT NULL;
CREATE INDEX IF NOT EXISTS memories_root_idx ON memories (root_memory_id);

DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = current_schema() AND indexname = 'memories_embedding_idx'
	) THEN
		EXECUTE 'CREATE INDEX memories_embedding_idx ON memories USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);';
	END IF;
END
$$;

CREATE TABLE IF NOT EXISTS memory_sources (
	id TEXT PRIMARY KEY,
	memory_id TEXT NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_id TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS memory_sources_memory_idx ON memory_sources (memory_id);
CREATE INDEX IF NOT EXISTS memory_sources_document_idx ON memory_sources (document_id);

CREATE TABLE IF NOT EXISTS container_tags (
	tag TEXT PRIMARY KEY,
	should_filter BOOLEAN NOT NULL DEFAULT false,
	filter_prompt TEXT
);

CREATE TABLE IF NOT EXISTS user_profiles (
	container_tag TEXT PRIMARY KEY,
	narrative TEXT NOT NULL DEFAULT '',
	summary JSONB NOT NULL DEFAULT '{}'::jsonb,
	cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS momo_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := s.pool.Exec(ctx, fmt.Sprintf(statements, s.dimension))
	if err != nil && strings.Contains(err.Error(), "ivfflat") {
		err = nil
	}
	return err
}
