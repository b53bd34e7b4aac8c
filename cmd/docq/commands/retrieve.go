package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docq-ai/docq-go/internal/rag"
)

// NewRetrieveCmd constructs the `docq retrieve` command, which runs a
// similarity search and prints the ranked chunks without answer synthesis.
func NewRetrieveCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Retrieve the chunks most similar to a query",
		Long: `Embed the query, search the vector index, and print the ranked chunks.
No LLM is involved — this shows exactly what 'docq ask' would ground its
answer in.

Examples:
  docq retrieve "late submission penalty"
  docq retrieve --top-k 3 "grading criteria"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()
			query := strings.Join(args, " ")

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}

			idx, err := buildIndex(log)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}
			defer idx.Close()

			retriever, err := rag.NewRetriever(emb, idx, topK)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}

			results, err := retriever.Retrieve(ctx, query, topK)
			if err != nil {
				return fmt.Errorf("retrieve: %w", err)
			}

			if len(results) == 0 {
				fmt.Println("no chunks found — has a document been ingested?")
				return nil
			}

			printResults(results)
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of chunks to retrieve")

	return cmd
}

// printResults renders ranked results for terminal reading.
func printResults(results []rag.RankedResult) {
	for _, r := range results {
		fmt.Printf("--- rank %d  (score %.4f, source %s, chunk %d) ---\n",
			r.Rank, r.Score, r.Metadata.Source, r.Metadata.ChunkID)
		fmt.Println(r.Text)
		fmt.Println()
	}
}
