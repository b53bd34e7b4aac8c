package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/docq-ai/docq-go/internal/chunker"
)

// fakeEmbedder returns a fixed vector for every input, or a canned error.
type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

// fakeIndex serves pre-baked hits and records calls. Query respects topK.
type fakeIndex struct {
	hits    []Hit
	err     error
	lastTop int
}

func (f *fakeIndex) Create(context.Context) error { return nil }
func (f *fakeIndex) Drop(context.Context) error   { return nil }
func (f *fakeIndex) Add(context.Context, []chunker.Chunk, [][]float32) error {
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int) ([]Hit, error) {
	f.lastTop = topK
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.hits) {
		return f.hits[:topK], nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Count(context.Context) (uint64, error)    { return uint64(len(f.hits)), nil }
func (f *fakeIndex) Peek(context.Context, int) ([]Hit, error) { return f.hits, nil }
func (f *fakeIndex) Close() error                             { return nil }

func hitsN(n int) []Hit {
	out := make([]Hit, 0, n)
	for i := range n {
		out = append(out, Hit{
			Metadata: Metadata{ChunkID: i + 1, Source: "doc.txt", ChunkSize: 10 + i},
			Text:     fmt.Sprintf("chunk %d", i+1),
			Distance: float32(i) * 0.1,
		})
	}
	return out
}

func TestRetrieve_RanksFollowIndexOrder(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{hits: hitsN(4)}
	r, err := NewRetriever(&fakeEmbedder{vec: []float32{1, 0}}, idx, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	results, err := r.Retrieve(context.Background(), "what is chunk one?", 4)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(results) != 4 {
		t.Fatalf("want 4 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Rank != i+1 {
			t.Errorf("results[%d].Rank = %d, want %d", i, res.Rank, i+1)
		}
		if i > 0 && res.Score < results[i-1].Score {
			t.Errorf("scores decreased at rank %d: %f < %f", res.Rank, res.Score, results[i-1].Score)
		}
		if res.Metadata.ChunkID != i+1 || res.Metadata.Source != "doc.txt" {
			t.Errorf("results[%d].Metadata = %+v, not copied verbatim", i, res.Metadata)
		}
		if res.Text != fmt.Sprintf("chunk %d", i+1) {
			t.Errorf("results[%d].Text = %q", i, res.Text)
		}
	}
}

func TestRetrieve_ShortCollection(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{hits: hitsN(3)}
	r, err := NewRetriever(&fakeEmbedder{vec: []float32{1}}, idx, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	results, err := r.Retrieve(context.Background(), "q", 10)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results from a 3-chunk collection, got %d", len(results))
	}
	for i, res := range results {
		if res.Rank != i+1 {
			t.Errorf("results[%d].Rank = %d, want %d", i, res.Rank, i+1)
		}
	}
}

func TestRetrieve_EmptyCollection(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{}
	r, err := NewRetriever(&fakeEmbedder{vec: []float32{1}}, idx, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	results, err := r.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve against empty collection: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("want empty result set, got %d", len(results))
	}
}

func TestRetrieve_DefaultTopK(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{hits: hitsN(10)}
	r, err := NewRetriever(&fakeEmbedder{vec: []float32{1}}, idx, 3)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	results, err := r.Retrieve(context.Background(), "q", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if idx.lastTop != 3 {
		t.Errorf("index queried with topK=%d, want default 3", idx.lastTop)
	}
	if len(results) != 3 {
		t.Errorf("want 3 results, got %d", len(results))
	}
}

func TestRetrieve_EmbeddingFailure(t *testing.T) {
	t.Parallel()
	r, err := NewRetriever(&fakeEmbedder{err: errors.New("connection refused")}, &fakeIndex{}, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	_, err = r.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("want ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestRetrieve_CollectionNotFound(t *testing.T) {
	t.Parallel()
	idx := &fakeIndex{err: fmt.Errorf("qdrant: %w: no such collection", ErrCollectionNotFound)}
	r, err := NewRetriever(&fakeEmbedder{vec: []float32{1}}, idx, 5)
	if err != nil {
		t.Fatalf("NewRetriever: %v", err)
	}

	_, err = r.Retrieve(context.Background(), "q", 5)
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("want ErrCollectionNotFound, got %v", err)
	}
}

func TestNewRetriever_NilDependencies(t *testing.T) {
	t.Parallel()
	if _, err := NewRetriever(nil, &fakeIndex{}, 5); err == nil {
		t.Error("want error for nil embedder")
	}
	if _, err := NewRetriever(&fakeEmbedder{vec: []float32{1}}, nil, 5); err == nil {
		t.Error("want error for nil index")
	}
}
