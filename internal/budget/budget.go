// Package budget provides token budget estimation and context trimming for
// answer synthesis. Because multiple LLM backends with different tokenizers
// are supported, it uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose). This deliberately under-estimates
// to leave headroom for model-specific overhead.
package budget

import (
	"github.com/cloudwego/eino/schema"

	"github.com/docq-ai/docq-go/internal/rag"
)

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English prose.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models (Llama 3 8B)
	// while leaving room for the answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// TrimResults drops the lowest-ranked retrieval results until the estimated
// token count of the remaining chunk texts fits within maxTokens. Results
// must already be in rank order; the best-ranked chunks survive. A single
// over-budget chunk at rank 1 is kept — answering from a truncated context
// beats answering from none.
func TrimResults(results []rag.RankedResult, maxTokens int) []rag.RankedResult {
	total := 0
	for _, r := range results {
		total += Estimate(r.Text)
	}
	for len(results) > 1 && total > maxTokens {
		last := results[len(results)-1]
		results = results[:len(results)-1]
		total -= Estimate(last.Text)
	}
	return results
}
