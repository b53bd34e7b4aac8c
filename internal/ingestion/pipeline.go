// Package ingestion implements the document ingestion pipeline. It extracts
// text from a source document, normalizes it, splits it into overlapping
// chunks, embeds each batch, and rebuilds the vector index with the result.
// The pipeline is invoked by the `docq ingest` CLI command.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/docq-ai/docq-go/internal/chunker"
	"github.com/docq-ai/docq-go/internal/extract"
	"github.com/docq-ai/docq-go/internal/metrics"
	"github.com/docq-ai/docq-go/internal/normalize"
	"github.com/docq-ai/docq-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per chunk.
	// Defaults to 1000 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters repeated between consecutive
	// chunks. Zero means no overlap; it must be strictly smaller than
	// ChunkSize. A nil Config defaults to 200.
	ChunkOverlap int

	// EmbedBatchSize is the number of chunks sent per embedding call.
	// Defaults to 32 if zero.
	EmbedBatchSize int

	// EmbedRPS caps embedding calls per second. Zero means no limit.
	EmbedRPS float64
}

// Pipeline orchestrates the extract → normalize → chunk → embed → index flow
// for a single source document. Each run is a full rebuild: the previous
// collection contents are dropped before the new chunks are written, so the
// index always reflects exactly one ingestion run.
type Pipeline struct {
	// embedder converts chunk text into dense vector embeddings.
	embedder rag.Embedder

	// index is the vector index being rebuilt.
	index rag.VectorIndex

	// splitter produces the overlapping chunks.
	splitter *chunker.Splitter

	// limiter throttles embedding calls. Nil when EmbedRPS is zero.
	limiter *rate.Limiter

	// m records ingestion metrics.
	m *metrics.Metrics

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, index rag.VectorIndex, m *metrics.Metrics, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if index == nil {
		return nil, fmt.Errorf("ingestion: index must not be nil")
	}
	if cfg == nil {
		cfg = &Config{ChunkOverlap: 200}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 32
	}

	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	var limiter *rate.Limiter
	if cfg.EmbedRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRPS), 1)
	}

	return &Pipeline{
		embedder: embedder,
		index:    index,
		splitter: splitter,
		limiter:  limiter,
		m:        m,
		cfg:      cfg,
	}, nil
}

// IngestFile extracts and normalizes the document at path, then ingests it.
// The chunk source label is the file's base name.
func (p *Pipeline) IngestFile(ctx context.Context, path string, progress func(msg string)) ([]chunker.Chunk, error) {
	raw, err := extract.File(path)
	if err != nil {
		return nil, err
	}
	return p.Ingest(ctx, filepath.Base(path), normalize.Corpus(raw), progress)
}

// Ingest splits text, embeds the chunks, and rebuilds the index with them.
// The write is all-or-nothing: on an index write failure the half-written
// collection is dropped so retrieval never sees a partial run. The produced
// chunks are returned so callers can persist or display them.
func (p *Pipeline) Ingest(ctx context.Context, source, text string, progress func(msg string)) ([]chunker.Chunk, error) {
	if progress == nil {
		progress = func(string) {}
	}

	chunks := p.splitter.Split(text, source)
	progress(fmt.Sprintf("chunked %s into %d chunks", source, len(chunks)))

	// Rebuild from scratch: a stale collection must not leak chunks from a
	// previous run into the new one.
	if err := p.index.Drop(ctx); err != nil && !errors.Is(err, rag.ErrCollectionNotFound) {
		p.countRun("error")
		return nil, fmt.Errorf("ingestion: dropping previous collection: %w", err)
	}
	if err := p.index.Create(ctx); err != nil {
		p.countRun("error")
		return nil, fmt.Errorf("ingestion: creating collection: %w", err)
	}
	if len(chunks) == 0 {
		p.countRun("empty")
		return nil, nil
	}

	vectors, err := p.embedAll(ctx, chunks, progress)
	if err != nil {
		p.countRun("error")
		return nil, err
	}

	if err := p.index.Add(ctx, chunks, vectors); err != nil {
		// Best effort: leave no partial collection behind.
		_ = p.index.Drop(context.WithoutCancel(ctx))
		p.countRun("error")
		return nil, fmt.Errorf("ingestion: %w", err)
	}

	if p.m != nil {
		p.m.ChunksIngested.WithLabelValues(source).Add(float64(len(chunks)))
	}
	p.countRun("ok")
	progress(fmt.Sprintf("indexed %d chunks from %s", len(chunks), source))
	return chunks, nil
}

// embedAll embeds chunks in batches of cfg.EmbedBatchSize, honoring the rate
// limiter, and returns vectors parallel to chunks. The first failing batch
// aborts the run.
func (p *Pipeline) embedAll(ctx context.Context, chunks []chunker.Chunk, progress func(msg string)) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += p.cfg.EmbedBatchSize {
		end := min(start+p.cfg.EmbedBatchSize, len(chunks))

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("ingestion: rate limit wait: %w", err)
			}
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		began := time.Now()
		batch, err := p.embedder.Embed(ctx, texts)
		if p.m != nil {
			p.m.EmbedDurationSeconds.Observe(time.Since(began).Seconds())
		}
		if err != nil {
			p.countBatch("error")
			return nil, fmt.Errorf("ingestion: %w: %v", rag.ErrEmbeddingUnavailable, err)
		}
		if len(batch) != len(texts) {
			p.countBatch("error")
			return nil, fmt.Errorf("ingestion: %w: expected %d vectors, got %d", rag.ErrEmbeddingUnavailable, len(texts), len(batch))
		}
		p.countBatch("ok")

		vectors = append(vectors, batch...)
		progress(fmt.Sprintf("embedded %d/%d chunks", end, len(chunks)))
	}

	return vectors, nil
}

func (p *Pipeline) countRun(outcome string) {
	if p.m != nil {
		p.m.IngestRunsTotal.WithLabelValues(outcome).Inc()
	}
}

func (p *Pipeline) countBatch(outcome string) {
	if p.m != nil {
		p.m.EmbedBatchesTotal.WithLabelValues(outcome).Inc()
	}
}
