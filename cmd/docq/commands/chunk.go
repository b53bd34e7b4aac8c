package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docq-ai/docq-go/internal/chunker"
	"github.com/docq-ai/docq-go/internal/extract"
	"github.com/docq-ai/docq-go/internal/normalize"
)

// NewChunkCmd constructs the `docq chunk` command, which splits a document
// into chunks and writes them to a JSON file without touching the index.
// Useful for inspecting what an ingestion run would store.
func NewChunkCmd() *cobra.Command {
	var size int
	var overlap int
	var out string

	cmd := &cobra.Command{
		Use:   "chunk <file>",
		Short: "Split a document into chunks and write them to JSON",
		Long: `Extract, normalize, and split a document into overlapping chunks, then
write them to a JSON file. No embedding or indexing happens — this is a dry
run of the splitting stage.

Examples:
  docq chunk grading-rules.pdf
  docq chunk notes.txt --size 500 --overlap 50 --out notes-chunks.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.Default()
			path := args[0]

			splitter, err := chunker.New(size, overlap)
			if err != nil {
				return fmt.Errorf("chunk: %w", err)
			}

			raw, err := extract.File(path)
			if err != nil {
				return fmt.Errorf("chunk: %w", err)
			}

			chunks := splitter.Split(normalize.Corpus(raw), filepath.Base(path))
			if err := chunker.WriteFile(out, chunks); err != nil {
				return fmt.Errorf("chunk: %w", err)
			}

			log.Info("document chunked",
				slog.String("source", path),
				slog.Int("chunks", len(chunks)),
				slog.String("out", out),
			)
			fmt.Printf("wrote %d chunks to %s\n", len(chunks), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 1000, "Maximum chunk size in characters")
	cmd.Flags().IntVar(&overlap, "overlap", 200, "Character overlap between consecutive chunks")
	cmd.Flags().StringVarP(&out, "out", "o", "chunks.json", "Output JSON file")

	return cmd
}
