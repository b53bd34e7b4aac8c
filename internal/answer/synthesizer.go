// Package answer synthesizes a natural-language answer from retrieved chunks
// using the configured chat model. It is a single grounded completion, not an
// agent loop: the retrieved context and the question go into one prompt.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/docq-ai/docq-go/internal/budget"
	"github.com/docq-ai/docq-go/internal/rag"
)

// NoAnswer is the reply the model is instructed to give when the retrieved
// context does not contain the answer. It is also returned directly when
// there is no context at all, skipping the model call.
const NoAnswer = "I don't have enough information to answer this question."

// instruction is the grounding preamble for every synthesis prompt.
const instruction = `Based on the following context, answer the user's question. If the answer is not in the context, say "` + NoAnswer + `"`

// Synthesizer turns a question plus ranked retrieval results into an answer.
type Synthesizer struct {
	// model is the chat backend used for generation.
	model model.BaseChatModel

	// maxContextTokens bounds the estimated size of the chunk context
	// included in the prompt.
	maxContextTokens int
}

// NewSynthesizer constructs a Synthesizer. maxContextTokens ≤ 0 selects
// budget.DefaultMaxContextTokens.
func NewSynthesizer(m model.BaseChatModel, maxContextTokens int) (*Synthesizer, error) {
	if m == nil {
		return nil, fmt.Errorf("answer: model must not be nil")
	}
	if maxContextTokens <= 0 {
		maxContextTokens = budget.DefaultMaxContextTokens
	}
	return &Synthesizer{model: m, maxContextTokens: maxContextTokens}, nil
}

// Answer generates an answer to query grounded in results. Results beyond
// the context budget are dropped lowest-ranked first. With no results at all
// the canned NoAnswer reply is returned without calling the model.
func (s *Synthesizer) Answer(ctx context.Context, query string, results []rag.RankedResult) (string, error) {
	results = budget.TrimResults(results, s.maxContextTokens)
	if len(results) == 0 {
		return NoAnswer, nil
	}

	resp, err := s.model.Generate(ctx, []*schema.Message{
		schema.UserMessage(Prompt(query, results)),
	})
	if err != nil {
		return "", fmt.Errorf("answer: generation failed: %w", err)
	}
	return strings.TrimSpace(resp.Content), nil
}

// Prompt renders the synthesis prompt: instruction, chunk texts in rank
// order separated by blank lines, then the question.
func Prompt(query string, results []rag.RankedResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Text)
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(texts, "\n\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
