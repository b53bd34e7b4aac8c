// Package metrics registers the Prometheus metrics for the ingestion and
// retrieval paths and can expose them on an optional scrape endpoint.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics owned by the pipeline. A single
// instance is created per process; tests inject a fresh prometheus.Registry
// so the default registry stays clean.
type Metrics struct {
	// ChunksIngested counts chunks written to the vector index, partitioned
	// by source document.
	ChunksIngested *prometheus.CounterVec

	// EmbedBatchesTotal counts embedding batches, partitioned by outcome
	// ("ok" or "error").
	EmbedBatchesTotal *prometheus.CounterVec

	// EmbedDurationSeconds records the latency of each embedding batch call.
	EmbedDurationSeconds prometheus.Histogram

	// IngestRunsTotal counts full ingestion runs, partitioned by outcome.
	IngestRunsTotal *prometheus.CounterVec

	// QueriesTotal counts retrieval queries, partitioned by outcome
	// ("ok", "empty", or "error").
	QueriesTotal *prometheus.CounterVec

	// RetrievalDurationSeconds records end-to-end retrieval latency,
	// embedding included.
	RetrievalDurationSeconds prometheus.Histogram
}

// New registers all pipeline metrics against reg. promauto.With(reg) is used
// so each call registers into the provided registry rather than the global
// default, which keeps unit tests hermetic.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ChunksIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docq",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total number of chunks written to the vector index, partitioned by source.",
		}, []string{"source"}),

		EmbedBatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docq",
			Subsystem: "embed",
			Name:      "batches_total",
			Help:      "Total number of embedding batch calls, partitioned by outcome.",
		}, []string{"outcome"}),

		EmbedDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docq",
			Subsystem: "embed",
			Name:      "duration_seconds",
			Help:      "Latency of embedding batch calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		IngestRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docq",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total number of ingestion runs, partitioned by outcome.",
		}, []string{"outcome"}),

		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docq",
			Subsystem: "retrieve",
			Name:      "queries_total",
			Help:      "Total number of retrieval queries, partitioned by outcome.",
		}, []string{"outcome"}),

		RetrievalDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docq",
			Subsystem: "retrieve",
			Name:      "duration_seconds",
			Help:      "End-to-end retrieval latency including query embedding.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Serve exposes reg on addr at /metrics in a background goroutine and returns
// the server so callers can shut it down.
func Serve(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("metrics listener started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics listener failed", slog.String("error", err.Error()))
		}
	}()

	return srv
}
