// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionCyclesTotal tracks ingestion cycles per provider and outcome.
	IngestionCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationhub_ingestion_cycles_total",
			Help: "Total number of provider ingestion cycles",
		},
		[]string{"provider", "status"},
	)

	// RecordsUpsertedTotal tracks canonical records written per provider.
	RecordsUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationhub_records_upserted_total",
			Help: "Total number of canonical measurement records upserted",
		},
		[]string{"provider"},
	)

	// StoreQueriesTotal tracks store operations.
	StoreQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationhub_store_queries_total",
			Help: "Total number of store queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// StoreQueryDuration tracks store operation latency.
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stationhub_store_query_duration_seconds",
			Help:    "Duration of store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)

	// RecordsFilteredTotal counts records dropped by the obsolescence filter.
	RecordsFilteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stationhub_records_filtered_total",
			Help: "Total number of records excluded as obsolete",
		},
	)

	// ViewRequestsTotal tracks assembler view requests by view and envelope
	// condition code.
	ViewRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stationhub_view_requests_total",
			Help: "Total number of view assembly requests",
		},
		[]string{"view", "condition"},
	)
)

// RecordStoreQuery records one store operation.
func RecordStoreQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	StoreQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	StoreQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}

// RecordIngestionCycle records one provider cycle outcome.
func RecordIngestionCycle(provider string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	IngestionCyclesTotal.WithLabelValues(provider, status).Inc()
}
