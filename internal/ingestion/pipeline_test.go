package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/docq-ai/docq-go/internal/chunker"
	"github.com/docq-ai/docq-go/internal/rag"
)

// scriptedEmbedder returns a constant vector per text and can be told to fail
// starting at a given call number.
type scriptedEmbedder struct {
	calls      int
	failOnCall int // 0 = never fail
}

func (s *scriptedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.failOnCall > 0 && s.calls >= s.failOnCall {
		return nil, errors.New("connection refused")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

// recordingIndex records the order of index operations.
type recordingIndex struct {
	ops []string

	dropErr error
	addErr  error

	addedChunks  []chunker.Chunk
	addedVectors [][]float32
}

func (r *recordingIndex) Create(context.Context) error {
	r.ops = append(r.ops, "create")
	return nil
}

func (r *recordingIndex) Drop(context.Context) error {
	r.ops = append(r.ops, "drop")
	return r.dropErr
}

func (r *recordingIndex) Add(_ context.Context, chunks []chunker.Chunk, vectors [][]float32) error {
	r.ops = append(r.ops, "add")
	if r.addErr != nil {
		return r.addErr
	}
	r.addedChunks = chunks
	r.addedVectors = vectors
	return nil
}

func (r *recordingIndex) Query(context.Context, []float32, int) ([]rag.Hit, error) {
	return nil, nil
}
func (r *recordingIndex) Count(context.Context) (uint64, error)        { return 0, nil }
func (r *recordingIndex) Peek(context.Context, int) ([]rag.Hit, error) { return nil, nil }
func (r *recordingIndex) Close() error                                 { return nil }

func TestIngest_FullRebuildOrder(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{}
	p, err := NewPipeline(&scriptedEmbedder{}, idx, nil, &Config{ChunkSize: 20, ChunkOverlap: 5})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	chunks, err := p.Ingest(context.Background(), "rules.pdf", "sentence one. sentence two. sentence three.", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	want := []string{"drop", "create", "add"}
	if fmt.Sprint(idx.ops) != fmt.Sprint(want) {
		t.Errorf("index ops = %v, want %v", idx.ops, want)
	}
	if len(chunks) == 0 {
		t.Fatal("Ingest returned no chunks")
	}
	if len(idx.addedChunks) != len(chunks) || len(idx.addedVectors) != len(chunks) {
		t.Errorf("indexed %d chunks / %d vectors, want %d of each",
			len(idx.addedChunks), len(idx.addedVectors), len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkID != i+1 {
			t.Errorf("chunks[%d].ChunkID = %d, want %d", i, c.ChunkID, i+1)
		}
		if c.Source != "rules.pdf" {
			t.Errorf("chunks[%d].Source = %q", i, c.Source)
		}
	}
}

func TestIngest_MissingCollectionIsNotAnError(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{dropErr: fmt.Errorf("qdrant: %w", rag.ErrCollectionNotFound)}
	p, err := NewPipeline(&scriptedEmbedder{}, idx, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, err := p.Ingest(context.Background(), "doc.txt", "some text", nil); err != nil {
		t.Fatalf("first ingestion against a fresh index should succeed, got %v", err)
	}
}

func TestIngest_DropFailureAborts(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{dropErr: errors.New("connection reset")}
	p, err := NewPipeline(&scriptedEmbedder{}, idx, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	if _, err := p.Ingest(context.Background(), "doc.txt", "some text", nil); err == nil {
		t.Fatal("want error when dropping the previous collection fails")
	}
	for _, op := range idx.ops {
		if op == "add" {
			t.Error("pipeline wrote to the index after a failed drop")
		}
	}
}

func TestIngest_EmbeddingFailureAbortsBeforeWrite(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{}
	p, err := NewPipeline(&scriptedEmbedder{failOnCall: 1}, idx, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = p.Ingest(context.Background(), "doc.txt", "some text", nil)
	if !errors.Is(err, rag.ErrEmbeddingUnavailable) {
		t.Fatalf("want ErrEmbeddingUnavailable, got %v", err)
	}
	for _, op := range idx.ops {
		if op == "add" {
			t.Error("pipeline wrote to the index after a failed embed")
		}
	}
}

func TestIngest_WriteFailureDropsPartialCollection(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{addErr: fmt.Errorf("qdrant: %w: timeout", rag.ErrIndexWrite)}
	p, err := NewPipeline(&scriptedEmbedder{}, idx, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	_, err = p.Ingest(context.Background(), "doc.txt", "some text", nil)
	if !errors.Is(err, rag.ErrIndexWrite) {
		t.Fatalf("want ErrIndexWrite, got %v", err)
	}
	if last := idx.ops[len(idx.ops)-1]; last != "drop" {
		t.Errorf("last index op = %q, want cleanup drop", last)
	}
}

func TestIngest_EmptyTextRebuildsEmptyCollection(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{}
	emb := &scriptedEmbedder{}
	p, err := NewPipeline(emb, idx, nil, nil)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	chunks, err := p.Ingest(context.Background(), "blank.pdf", "   ", nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("want no chunks, got %d", len(chunks))
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for empty input", emb.calls)
	}
	want := []string{"drop", "create"}
	if fmt.Sprint(idx.ops) != fmt.Sprint(want) {
		t.Errorf("index ops = %v, want %v", idx.ops, want)
	}
}

func TestIngest_BatchesEmbeddingCalls(t *testing.T) {
	t.Parallel()
	idx := &recordingIndex{}
	emb := &scriptedEmbedder{}
	p, err := NewPipeline(emb, idx, nil, &Config{ChunkSize: 10, ChunkOverlap: 2, EmbedBatchSize: 2})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	text := strings.Repeat("word ", 40)
	chunks, err := p.Ingest(context.Background(), "doc.txt", text, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	wantCalls := (len(chunks) + 1) / 2
	if emb.calls != wantCalls {
		t.Errorf("embedder called %d times for %d chunks with batch size 2, want %d",
			emb.calls, len(chunks), wantCalls)
	}
	if len(idx.addedVectors) != len(chunks) {
		t.Errorf("indexed %d vectors, want %d", len(idx.addedVectors), len(chunks))
	}
}

func TestIngest_Deterministic(t *testing.T) {
	t.Parallel()
	text := "alpha beta gamma. delta epsilon zeta. eta theta iota."

	run := func() []chunker.Chunk {
		idx := &recordingIndex{}
		p, err := NewPipeline(&scriptedEmbedder{}, idx, nil, &Config{ChunkSize: 25, ChunkOverlap: 5})
		if err != nil {
			t.Fatalf("NewPipeline: %v", err)
		}
		chunks, err := p.Ingest(context.Background(), "doc.txt", text, nil)
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		return chunks
	}

	first, second := run(), run()
	if fmt.Sprintf("%+v", first) != fmt.Sprintf("%+v", second) {
		t.Errorf("re-ingesting identical input produced different chunks:\n%+v\n%+v", first, second)
	}
}

func TestNewPipeline_Validation(t *testing.T) {
	t.Parallel()
	if _, err := NewPipeline(nil, &recordingIndex{}, nil, nil); err == nil {
		t.Error("want error for nil embedder")
	}
	if _, err := NewPipeline(&scriptedEmbedder{}, nil, nil, nil); err == nil {
		t.Error("want error for nil index")
	}

	if _, err := NewPipeline(&scriptedEmbedder{}, &recordingIndex{}, nil, &Config{ChunkSize: 100, ChunkOverlap: 100}); err == nil {
		t.Error("want error for overlap == chunk size")
	}
	if _, err := NewPipeline(&scriptedEmbedder{}, &recordingIndex{}, nil, &Config{ChunkSize: 100, ChunkOverlap: 150}); err == nil {
		t.Error("want error for overlap > chunk size")
	}
	if _, err := NewPipeline(&scriptedEmbedder{}, &recordingIndex{}, nil, &Config{ChunkSize: 100, ChunkOverlap: -1}); err == nil {
		t.Error("want error for negative overlap")
	}

	// Zero overlap is a valid configuration, not a request for the default.
	p, err := NewPipeline(&scriptedEmbedder{}, &recordingIndex{}, nil, &Config{ChunkSize: 100, ChunkOverlap: 0})
	if err != nil {
		t.Fatalf("NewPipeline with zero overlap: %v", err)
	}
	if p.cfg.ChunkOverlap != 0 {
		t.Errorf("overlap = %d, want 0", p.cfg.ChunkOverlap)
	}
}
