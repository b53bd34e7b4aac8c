package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/docq-ai/docq-go/internal/embedder"
	"github.com/docq-ai/docq-go/internal/history"
	"github.com/docq-ai/docq-go/internal/ingestion"
	"github.com/docq-ai/docq-go/internal/rag"
)

// defaultCollection is the Qdrant collection used when QDRANT_COLLECTION is
// not set.
const defaultCollection = "docq-docs"

// buildIndex connects to Qdrant using env configuration and returns the
// vector index. The caller owns Close.
func buildIndex(log *slog.Logger) (*rag.QdrantIndex, error) {
	host := getEnvOrDefault("QDRANT_HOST", "localhost")
	port := getEnvInt("QDRANT_PORT", 6334)
	collection := getEnvOrDefault("QDRANT_COLLECTION", defaultCollection)
	vectorSize := uint64(embedder.DefaultDimensions(embedder.Backend())) //nolint:gosec // dimensions are bounded

	idx, err := rag.NewQdrantIndex(&rag.QdrantConfig{
		Host:       host,
		Port:       port,
		Collection: collection,
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
	}

	log.Info("qdrant index ready",
		slog.String("host", host),
		slog.Int("port", port),
		slog.String("collection", collection),
	)
	return idx, nil
}

// buildEmbedder validates and constructs the embedder from env configuration.
func buildEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("backend", embedder.Backend()))
	return emb, nil
}

// chunkingConfigFromEnv resolves the splitter and throughput settings.
func chunkingConfigFromEnv() *ingestion.Config {
	return &ingestion.Config{
		ChunkSize:      getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 200),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 32),
		EmbedRPS:       getEnvFloat("EMBED_RPS", 0),
	}
}

// openHistory opens the run/exchange history store. Returns nil when history
// is disabled or unavailable — history failures never block the main flow.
func openHistory(log *slog.Logger) *history.Store {
	if os.Getenv("DOCQ_HISTORY_DB") == "disabled" {
		return nil
	}
	path, err := history.DefaultDBPath()
	if err != nil {
		log.Warn("history disabled", slog.String("reason", err.Error()))
		return nil
	}
	s, err := history.Open(path)
	if err != nil {
		log.Warn("history disabled", slog.String("reason", err.Error()))
		return nil
	}
	return s
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat returns the float64 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
