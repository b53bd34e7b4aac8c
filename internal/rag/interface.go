// Package rag defines the interfaces and result types for the retrieval
// pipeline: text embedding, vector indexing, and ranked retrieval.
// Concrete implementations (Qdrant, HTTP embedders) satisfy these interfaces
// so the pipeline and CLI never depend on a specific backend, and tests can
// inject deterministic fakes.
package rag

import (
	"context"

	"github.com/docq-ai/docq-go/internal/chunker"
)

// Metadata is the per-chunk metadata stored alongside each vector and copied
// verbatim into retrieval results.
type Metadata struct {
	// ChunkID is the 1-based chunk identifier assigned at split time.
	ChunkID int `json:"chunk_id"`
	// Source identifies the originating document.
	Source string `json:"source"`
	// ChunkSize is the character length of the chunk text.
	ChunkSize int `json:"chunk_size"`
}

// Hit is a single raw match returned by a VectorIndex query, in the index's
// best-first order.
type Hit struct {
	// Metadata is the stored chunk metadata.
	Metadata Metadata
	// Text is the stored chunk text, unmodified since ingestion.
	Text string
	// Distance is the index's distance to the query vector; lower means
	// more similar. Not bounded to [0,1].
	Distance float32
}

// RankedResult is one entry of a retrieval response.
type RankedResult struct {
	// Rank is the 1-based position in the result sequence, assigned in the
	// index's best-first order with no gaps.
	Rank int `json:"rank"`
	// Score is the distance reported by the index (lower = more similar).
	Score float32 `json:"score"`
	// Metadata is a copy of the original chunk's metadata.
	Metadata Metadata `json:"metadata"`
	// Text is the stored chunk text.
	Text string `json:"text"`
}

// Embedder converts text into dense vector embeddings. The same embedder
// (and underlying model) must serve both ingestion and query time.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex stores chunk vectors for one named collection and supports
// nearest-neighbour queries. The ingestion pipeline rebuilds the collection
// from scratch on every run (Drop then Create then Add) so chunk IDs stay
// stable and no stale entries survive.
type VectorIndex interface {
	// Create creates the collection. Creating an existing collection is a no-op.
	Create(ctx context.Context) error

	// Drop deletes the collection and everything in it. Dropping a missing
	// collection returns ErrCollectionNotFound.
	Drop(ctx context.Context) error

	// Add stores chunks with their pre-computed vectors. vectors[i] is the
	// embedding of chunks[i]. A failed Add wraps ErrIndexWrite.
	Add(ctx context.Context, chunks []chunker.Chunk, vectors [][]float32) error

	// Query returns up to topK nearest hits in best-first (ascending
	// distance) order. A collection holding fewer than topK entries yields
	// a shorter result, not an error; a missing collection yields
	// ErrCollectionNotFound; an existing empty collection yields an empty
	// result.
	Query(ctx context.Context, vector []float32, topK int) ([]Hit, error)

	// Count reports how many chunks the collection holds.
	Count(ctx context.Context) (uint64, error)

	// Peek returns up to limit stored hits in arbitrary order, for
	// post-ingestion verification.
	Peek(ctx context.Context, limit int) ([]Hit, error)

	// Close releases any resources held by the index.
	Close() error
}

// Retriever answers a natural-language query with a ranked list of stored
// chunks. Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve embeds the query and returns the topK most relevant chunks.
	Retrieve(ctx context.Context, query string, topK int) ([]RankedResult, error)
}
