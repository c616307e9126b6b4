// Package store defines the polymorphic persistence interface the
// core consumes; internal/store/postgres supplies the reference
// Postgres+pgvector backend.
package store

import (
	"context"
	"time"

	"github.com/momo-run/momo/internal/models"
)

// ChunkEmbeddingUpdate pairs a chunk id with the embedding the
// embedder produced for it, for a batch update after chunking.
type ChunkEmbeddingUpdate struct {
	ChunkID   string
	Embedding []float32
}

// Store is the single capability surface every backend implements:
// document CRUD/listing, chunk batch operations and similarity
// search, memory CRUD/version-chain mutation/relation edit/embedding
// update/similarity search/graph traversal, memory-source
// create/lookup, and metadata key/value storage (the embedding
// dimension record). Tag filters MUST be parameterised by every
// implementation — never string-concatenated into a query.
type Store interface {
	// Documents
	CreateDocument(ctx context.Context, doc *models.Document) error
	UpdateDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)
	ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentSummary, models.Pagination, error)
	QueueAllDocumentsForReprocessing(ctx context.Context) error

	// Chunks
	CreateChunksBatch(ctx context.Context, chunks []*models.Chunk) error
	UpdateChunkEmbeddingsBatch(ctx context.Context, updates []ChunkEmbeddingUpdate) error
	DeleteChunksByDocumentID(ctx context.Context, documentID string) error
	DeleteAllChunks(ctx context.Context) error
	SearchSimilarChunks(ctx context.Context, embedding []float32, limit int, threshold float64, containerTags []string) ([]models.ChunkMatch, error)

	// Memories
	CreateMemory(ctx context.Context, mem *models.Memory) error
	UpdateMemory(ctx context.Context, mem *models.Memory) error
	GetMemory(ctx context.Context, id string) (*models.Memory, error)
	GetLatestMemoryByContent(ctx context.Context, content, containerTag string) (*models.Memory, error)
	ListMemoriesByTag(ctx context.Context, containerTag string, memTypes []models.MemoryType, staticOnly bool, limit int) ([]models.Memory, error)
	ForgetMemory(ctx context.Context, id string, reason *string) (bool, error)
	UpdateMemorySourceCount(ctx context.Context, id string, count int) error
	SearchSimilarMemories(ctx context.Context, embedding []float32, limit int, threshold float64, containerTag *string, includeForgotten bool) ([]models.MemoryMatch, error)
	SetMemoryForgetAfter(ctx context.Context, id string, when time.Time) (int, error)

	// Graph
	GetGraphNeighborhood(ctx context.Context, memoryID string, depth, maxNodes int, relationTypes map[models.GraphEdgeType]bool) (*models.GraphResponse, error)
	GetContainerGraph(ctx context.Context, tag string, maxNodes int) (*models.GraphResponse, error)

	// Background-manager support
	GetForgettingCandidates(ctx context.Context, now time.Time) ([]*models.Memory, error)
	GetEpisodeDecayCandidates(ctx context.Context) ([]models.EpisodeDecayCandidate, error)
	GetActiveContainerTags(ctx context.Context) ([]string, error)
	GetMaxMemoryUpdatedAt(ctx context.Context, tag string) (*time.Time, error)

	// Profile cache
	GetCachedProfile(ctx context.Context, tag string) (*models.CachedProfile, error)
	UpsertCachedProfile(ctx context.Context, profile *models.CachedProfile) error

	// Container tags
	GetContainerTag(ctx context.Context, tag string) (*models.ContainerTag, error)

	// Memory sources
	CreateMemorySource(ctx context.Context, src *models.MemorySource) error

	// Metadata (embedding dimension record)
	GetEmbeddingDimension(ctx context.Context) (*int, error)
	SetEmbeddingDimension(ctx context.Context, dim int) error
}
