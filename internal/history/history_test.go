package history

import (
	"context"
	"testing"
)

// openTestStore opens an in-memory Store for use in tests.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_RecordAndRecentRuns(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, Run{Source: "rules.pdf", Chunks: 42, Outcome: "ok"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := s.RecordRun(ctx, Run{Source: "blank.pdf", Chunks: 0, Outcome: "empty"}); err != nil {
		t.Fatalf("record empty run: %v", err)
	}

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("want 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].Source != "blank.pdf" || runs[0].Outcome != "empty" {
		t.Errorf("runs[0] = %+v, want the blank.pdf run", runs[0])
	}
	if runs[1].Source != "rules.pdf" || runs[1].Chunks != 42 {
		t.Errorf("runs[1] = %+v, want the rules.pdf run", runs[1])
	}
}

func Test_Store_RecordAndRecentExchanges(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordExchange(ctx, Exchange{
		Question: "what is the late penalty?",
		Answer:   "ten percent per day",
		TopK:     5,
	}); err != nil {
		t.Fatalf("record exchange: %v", err)
	}

	exchanges, err := s.RecentExchanges(ctx, 10)
	if err != nil {
		t.Fatalf("recent exchanges: %v", err)
	}
	if len(exchanges) != 1 {
		t.Fatalf("want 1 exchange, got %d", len(exchanges))
	}
	e := exchanges[0]
	if e.Question != "what is the late penalty?" || e.Answer != "ten percent per day" || e.TopK != 5 {
		t.Errorf("exchange = %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func Test_Store_LimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for range 6 {
		if err := s.RecordRun(ctx, Run{Source: "doc.pdf", Chunks: 1, Outcome: "ok"}); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, 4)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 4 {
		t.Errorf("want 4 runs, got %d", len(runs))
	}
}

func Test_Store_EmptyReturnsNil(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	runs, err := s.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if runs != nil {
		t.Errorf("want nil for empty store, got %v", runs)
	}
	exchanges, err := s.RecentExchanges(ctx, 10)
	if err != nil {
		t.Fatalf("recent exchanges: %v", err)
	}
	if exchanges != nil {
		t.Errorf("want nil for empty store, got %v", exchanges)
	}
}
