package rag

import "errors"

var (
	// ErrEmbeddingUnavailable signals that the embedding backend could not
	// be reached or returned malformed output. The operation that hit it is
	// aborted, never partially completed.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrCollectionNotFound signals that the target collection does not
	// exist — ingestion was never run, or the collection name is wrong.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrIndexWrite signals a failed vector store write. Ingestion is
	// all-or-nothing per run: after this error the collection must be
	// rebuilt, not resumed.
	ErrIndexWrite = errors.New("index write failed")
)
