package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docq-ai/docq-go/internal/rag"
)

// fakeModel records the last prompt and replies with a fixed answer.
type fakeModel struct {
	reply    string
	err      error
	lastMsgs []*schema.Message
}

func (f *fakeModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.lastMsgs = msgs
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func ranked(texts ...string) []rag.RankedResult {
	out := make([]rag.RankedResult, 0, len(texts))
	for i, text := range texts {
		out = append(out, rag.RankedResult{Rank: i + 1, Text: text})
	}
	return out
}

func TestAnswer_PromptContainsContextAndQuestion(t *testing.T) {
	t.Parallel()
	m := &fakeModel{reply: "  late work loses ten percent per day.  "}
	s, err := NewSynthesizer(m, 0)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	got, err := s.Answer(context.Background(), "what is the late penalty?",
		ranked("late submissions lose ten percent per day", "grades are final after review week"))
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != "late work loses ten percent per day." {
		t.Errorf("answer = %q, want model reply trimmed", got)
	}

	if len(m.lastMsgs) != 1 || m.lastMsgs[0].Role != schema.User {
		t.Fatalf("model called with %d messages, want one user message", len(m.lastMsgs))
	}
	prompt := m.lastMsgs[0].Content
	for _, want := range []string{
		"Based on the following context",
		"late submissions lose ten percent per day\n\ngrades are final after review week",
		"Question: what is the late penalty?",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestAnswer_NoContextSkipsModel(t *testing.T) {
	t.Parallel()
	m := &fakeModel{reply: "should not be used"}
	s, err := NewSynthesizer(m, 0)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	got, err := s.Answer(context.Background(), "anything?", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got != NoAnswer {
		t.Errorf("answer = %q, want canned NoAnswer", got)
	}
	if m.lastMsgs != nil {
		t.Error("model was called despite empty context")
	}
}

func TestAnswer_TrimsToContextBudget(t *testing.T) {
	t.Parallel()
	m := &fakeModel{reply: "ok"}
	// Budget of 25 tokens fits two 40-char chunks but not three.
	s, err := NewSynthesizer(m, 25)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	keepA := strings.Repeat("a", 40)
	keepB := strings.Repeat("b", 40)
	drop := strings.Repeat("c", 40)
	if _, err := s.Answer(context.Background(), "q", ranked(keepA, keepB, drop)); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	prompt := m.lastMsgs[0].Content
	if !strings.Contains(prompt, keepA) || !strings.Contains(prompt, keepB) {
		t.Error("prompt dropped a chunk that fit the budget")
	}
	if strings.Contains(prompt, drop) {
		t.Error("prompt contains the over-budget rank-3 chunk")
	}
}

func TestAnswer_GenerationFailure(t *testing.T) {
	t.Parallel()
	s, err := NewSynthesizer(&fakeModel{err: errors.New("model offline")}, 0)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	if _, err := s.Answer(context.Background(), "q", ranked("some context")); err == nil {
		t.Error("want error when generation fails")
	}
}

func TestNewSynthesizer_NilModel(t *testing.T) {
	t.Parallel()
	if _, err := NewSynthesizer(nil, 0); err == nil {
		t.Error("want error for nil model")
	}
}
