package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding batch requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studyvault",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding batch request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	IngestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "ingests_total",
			Help:      "Total upload pipeline runs",
		},
		[]string{"source_type", "status"},
	)

	IngestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "studyvault",
			Name:      "ingest_duration_seconds",
			Help:      "End-to-end upload pipeline duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"source_type"},
	)

	IngestChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "ingest_chunks_total",
			Help:      "Total chunks indexed by the upload pipeline",
		},
		[]string{"source_type"},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "searches_total",
			Help:      "Total semantic search requests",
		},
		[]string{"status"},
	)

	PointsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "studyvault",
			Name:      "points_deleted_total",
			Help:      "Total vector points removed by document deletion",
		},
	)
)

var registered bool

// Register registers all pipeline metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(IngestsTotal)
	prometheus.MustRegister(IngestDuration)
	prometheus.MustRegister(IngestChunksTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(PointsDeletedTotal)
	registered = true
}
