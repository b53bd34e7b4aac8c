package rag

import (
	"context"
	"fmt"
)

// DefaultRetriever implements Retriever by combining an Embedder and a
// VectorIndex. It embeds the query at retrieval time, delegates similarity
// search to the index, and assigns ranks in the index's best-first order.
// It never re-ranks, filters, or deduplicates — it is a thin, deterministic
// ordering layer over the index response.
type DefaultRetriever struct {
	// embedder converts the query text to a dense vector.
	embedder Embedder

	// index performs the vector similarity search.
	index VectorIndex

	// defaultTopK is the number of results to return when the caller passes 0.
	defaultTopK int
}

// NewRetriever constructs a DefaultRetriever from the given Embedder and
// VectorIndex. defaultTopK sets the fallback result count when Retrieve is
// called with topK <= 0.
func NewRetriever(embedder Embedder, index VectorIndex, defaultTopK int) (*DefaultRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("rag: index must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &DefaultRetriever{
		embedder:    embedder,
		index:       index,
		defaultTopK: defaultTopK,
	}, nil
}

// Retrieve embeds the query and returns up to topK ranked results. A
// collection holding fewer than topK chunks yields a shorter sequence, not
// an error. Embedding failures wrap ErrEmbeddingUnavailable; querying a
// collection that was never created wraps ErrCollectionNotFound.
func (r *DefaultRetriever) Retrieve(ctx context.Context, query string, topK int) ([]RankedResult, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	embeddings, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: %w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return nil, fmt.Errorf("rag: %w: embedder returned empty vector for query", ErrEmbeddingUnavailable)
	}

	hits, err := r.index.Query(ctx, embeddings[0], topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}

	results := make([]RankedResult, 0, len(hits))
	for i, h := range hits {
		results = append(results, RankedResult{
			Rank:     i + 1,
			Score:    h.Distance,
			Metadata: h.Metadata,
			Text:     h.Text,
		})
	}
	return results, nil
}
