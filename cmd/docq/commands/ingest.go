package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/docq-ai/docq-go/internal/chunker"
	"github.com/docq-ai/docq-go/internal/history"
	"github.com/docq-ai/docq-go/internal/ingestion"
	"github.com/docq-ai/docq-go/internal/metrics"
)

// NewIngestCmd constructs the `docq ingest` command, which runs the document
// ingestion pipeline to (re)build the vector index.
func NewIngestCmd() *cobra.Command {
	var metricsAddr string
	var chunksOut string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a document into the vector index",
		Long: `Extract, chunk, embed, and index a document into Qdrant.

Each run is a full rebuild: the previous collection contents are replaced, so
the index always reflects exactly one document's latest ingestion.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: docq-docs)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  MODEL_PROVIDER       Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)
  CHUNK_SIZE           Maximum chunk size in characters (default: 1000)
  CHUNK_OVERLAP        Overlap between chunks in characters (default: 200)

Examples:
  docq ingest grading-rules.pdf
  docq ingest notes.txt --metrics-addr :9091
  docq ingest handbook.pdf --chunks-out chunks.json
  CHUNK_SIZE=500 docq ingest handbook.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()
			path := args[0]

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			idx, err := buildIndex(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer idx.Close()

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)
			if metricsAddr != "" {
				srv := metrics.Serve(metricsAddr, reg, log)
				defer srv.Close()
			}

			pipeline, err := ingestion.NewPipeline(emb, idx, m, chunkingConfigFromEnv())
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("starting ingestion", slog.String("source", path))

			chunks, err := pipeline.IngestFile(ctx, path, func(msg string) {
				log.Info(msg)
			})

			if h := openHistory(log); h != nil {
				defer h.Close()
				outcome := "ok"
				switch {
				case err != nil:
					outcome = "error"
				case len(chunks) == 0:
					outcome = "empty"
				}
				if herr := h.RecordRun(ctx, history.Run{
					Source:  filepath.Base(path),
					Chunks:  len(chunks),
					Outcome: outcome,
				}); herr != nil {
					log.Warn("failed to record ingestion run", slog.String("error", herr.Error()))
				}
			}

			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			if chunksOut != "" {
				if werr := chunker.WriteFile(chunksOut, chunks); werr != nil {
					return fmt.Errorf("ingest: %w", werr)
				}
				log.Info("chunks written", slog.String("out", chunksOut))
			}

			log.Info("ingestion complete", slog.Int("chunks", len(chunks)))
			fmt.Printf("indexed %d chunks from %s\n", len(chunks), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address during the run (e.g. :9091)")
	cmd.Flags().StringVar(&chunksOut, "chunks-out", "", "Also write the produced chunks to this JSON file")

	return cmd
}
