package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docq-ai/docq-go/internal/rag"
)

// NewStatusCmd constructs the `docq status` command, which reports what the
// vector index currently holds.
func NewStatusCmd() *cobra.Command {
	var peek int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the vector index",
		Long: `Report the chunk count of the configured Qdrant collection and
optionally a sample of stored chunks.

Examples:
  docq status
  docq status --peek 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			idx, err := buildIndex(log)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			defer idx.Close()

			count, err := idx.Count(ctx)
			if err != nil {
				if errors.Is(err, rag.ErrCollectionNotFound) {
					fmt.Println("no collection found — run 'docq ingest' first")
					return nil
				}
				return fmt.Errorf("status: %w", err)
			}

			fmt.Printf("collection %q holds %d chunks\n",
				getEnvOrDefault("QDRANT_COLLECTION", defaultCollection), count)

			if peek > 0 && count > 0 {
				hits, err := idx.Peek(ctx, peek)
				if err != nil {
					return fmt.Errorf("status: %w", err)
				}
				for _, h := range hits {
					fmt.Printf("--- chunk %d (source %s, %d chars) ---\n",
						h.Metadata.ChunkID, h.Metadata.Source, h.Metadata.ChunkSize)
					fmt.Println(h.Text)
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&peek, "peek", 0, "Also print up to this many stored chunks")

	return cmd
}
