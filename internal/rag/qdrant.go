package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/docq-ai/docq-go/internal/chunker"
)

// QdrantConfig holds connection parameters for a Qdrant vector index.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the collection name holding the ingested chunks.
	Collection string

	// VectorSize is the dimensionality of the stored embeddings. It must
	// match the embedding model used at both ingestion and query time.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantIndex implements VectorIndex backed by a Qdrant instance. Distances
// follow the package contract (lower = more similar): Qdrant reports cosine
// similarity, which is converted to cosine distance (1 - similarity) here.
//
// The constructor does NOT create the collection — querying before a first
// ingestion run deliberately fails with ErrCollectionNotFound, while a
// created-but-unpopulated collection returns empty results.
type QdrantIndex struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this index.
	cfg *QdrantConfig
}

// NewQdrantIndex connects to Qdrant and returns a ready-to-use VectorIndex.
func NewQdrantIndex(cfg *QdrantConfig) (*QdrantIndex, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	return &QdrantIndex{client: client, cfg: cfg}, nil
}

// Create creates the collection with a cosine-distance vector schema.
// Creating an already existing collection is a no-op.
func (q *QdrantIndex) Create(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", q.cfg.Collection, err)
	}
	return nil
}

// Drop deletes the collection and all stored chunks.
func (q *QdrantIndex) Drop(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.cfg.Collection); err != nil {
		return fmt.Errorf("qdrant: failed to delete collection %q: %w", q.cfg.Collection, mapNotFound(err))
	}
	return nil
}

// Add stores chunks with their embeddings in a single waited upsert, so a
// successful return means the data is durably indexed. vectors must be
// parallel to chunks.
func (q *QdrantIndex) Add(ctx context.Context, chunks []chunker.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("qdrant: %w: %d chunks but %d vectors", ErrIndexWrite, len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for i, c := range chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(c.ChunkID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"text":       c.Text,
				"source":     c.Source,
				"chunk_id":   int64(c.ChunkID),
				"chunk_size": int64(c.ChunkSize),
			}),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant: %w: %v", ErrIndexWrite, mapNotFound(err))
	}
	return nil
}

// Query performs a cosine similarity search and returns up to topK hits in
// ascending distance order.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]Hit, error) {
	limit := uint64(topK)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", mapNotFound(err))
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hit := hitFromPayload(p.Payload)
		// Qdrant reports cosine similarity (higher = closer); the package
		// contract is distance (lower = closer).
		hit.Distance = 1 - p.Score
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count reports the number of stored chunks in the collection.
func (q *QdrantIndex) Count(ctx context.Context) (uint64, error) {
	n, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.Collection,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count failed: %w", mapNotFound(err))
	}
	return n, nil
}

// Peek returns up to limit stored hits without a query vector, for
// verifying what an ingestion run stored. Distances are zero.
func (q *QdrantIndex) Peek(ctx context.Context, limit int) ([]Hit, error) {
	points, err := q.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: q.cfg.Collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: peek failed: %w", mapNotFound(err))
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, hitFromPayload(p.Payload))
	}
	return hits, nil
}

// Close closes the underlying Qdrant gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// hitFromPayload reconstructs the stored chunk fields from a point payload.
func hitFromPayload(payload map[string]*qdrant.Value) Hit {
	var h Hit
	if payload == nil {
		return h
	}
	if v, ok := payload["text"]; ok {
		h.Text = v.GetStringValue()
	}
	if v, ok := payload["source"]; ok {
		h.Metadata.Source = v.GetStringValue()
	}
	if v, ok := payload["chunk_id"]; ok {
		h.Metadata.ChunkID = int(v.GetIntegerValue())
	}
	if v, ok := payload["chunk_size"]; ok {
		h.Metadata.ChunkSize = int(v.GetIntegerValue())
	}
	return h
}

// mapNotFound translates a gRPC NotFound status into ErrCollectionNotFound
// so callers can match on the sentinel instead of transport details.
func mapNotFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%w: %v", ErrCollectionNotFound, err)
	}
	return err
}
