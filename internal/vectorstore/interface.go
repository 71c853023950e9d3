// Package vectorstore abstracts the vector index behind one interface
// (Store) with two implementations: azuresearch.go is the production
// backend against Azure AI Search's data-plane REST API, and qdrant.go is a
// dev/test backend. Selection is driven by VECTOR_STORE_BACKEND.
package vectorstore

import "context"

// HNSW tuning parameters shared by every backend's schema bootstrap.
const (
	HNSWM              = 4
	HNSWEfConstruction = 400
	HNSWEfSearch       = 500
	EmbeddingDimension = 1536

	// UpsertBatchSize is the largest number of chunks sent per upsert call.
	UpsertBatchSize = 1000
	// DeleteSearchPageSize bounds a single filtered search used to discover
	// chunk ids for deleteByDocumentId.
	DeleteSearchPageSize = 1000
)

// DocumentChunk is the persisted unit in the vector index.
type DocumentChunk struct {
	ID                 string // <sanitized-documentId>_chunk_<index>
	DocumentID         string
	DriveID            string
	DriveItemID        string
	WebURL             string
	SiteURL            string
	SiteName           string
	DocumentTitle      string
	FileType           string
	ChunkIndex         int
	ChunkText          string
	Embedding          []float32
	DocumentModifiedAt int64 // unix millis, UTC
	IndexedAt          int64 // unix millis, UTC
}

// SearchOptions bounds a similarity or hybrid search.
type SearchOptions struct {
	TopK      int
	SiteURL   string
	FileTypes []string
	MinScore  float32
}

// SearchHit is one ranked result from searchSimilar/searchHybrid. Score is
// always in [0, 1], larger is better.
type SearchHit struct {
	Chunk DocumentChunk
	Score float32
}

// Stats summarizes the current state of the index.
type Stats struct {
	DocumentCount int64
	StorageSize   int64
}

// Store is the vector index abstraction every backend implements.
type Store interface {
	// EnsureSchema idempotently describes-or-creates the index/collection.
	EnsureSchema(ctx context.Context) error

	// UpsertChunks merge-or-uploads chunks in batches of at most
	// UpsertBatchSize. A transport-level failure aborts the call; item-level
	// failures are aggregated and logged, not returned as a hard error.
	UpsertChunks(ctx context.Context, chunks []DocumentChunk) error

	// DeleteByDocumentID discovers and deletes every chunk belonging to
	// documentID. A no-op if none are found.
	DeleteByDocumentID(ctx context.Context, documentID string) error

	// SearchSimilar issues a pure-vector nearest-neighbor query.
	SearchSimilar(ctx context.Context, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error)

	// SearchHybrid blends vector similarity with the provider's native text
	// ranking. Falls back to vector-only ranking on backends without hybrid support.
	SearchHybrid(ctx context.Context, query string, queryEmbedding []float32, opts SearchOptions) ([]SearchHit, error)

	// GetStats reports index-level counters.
	GetStats(ctx context.Context) (Stats, error)

	// Close releases backend resources.
	Close() error
}
