// Package metrics exposes Prometheus collectors for the index core.
// Registration uses the default registry; the embedding process decides
// whether and where to serve it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesIndexed counts log records materialized into the index.
	MessagesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "feedql",
		Subsystem: "ingest",
		Name:      "messages_indexed_total",
		Help:      "Log records materialized into the index.",
	})

	// RecordErrors counts per-record ingestion failures that were skipped.
	RecordErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "feedql",
		Subsystem: "ingest",
		Name:      "record_errors_total",
		Help:      "Malformed log records skipped during ingestion.",
	})

	// SearchesTotal counts served searches by shape.
	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feedql",
		Subsystem: "query",
		Name:      "searches_total",
		Help:      "Searches served, by shape.",
	}, []string{"shape"})
)
