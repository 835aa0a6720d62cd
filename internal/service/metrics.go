package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "andes",
		Subsystem: "pipeline",
		Name:      "exports_total",
		Help:      "Trip exports by scope (trip, trips, all) and outcome.",
	}, []string{"scope", "outcome"})

	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "andes",
		Subsystem: "pipeline",
		Name:      "imports_total",
		Help:      "Trip imports by outcome: success, partial, failed or rolled_back.",
	}, []string{"outcome"})

	importedRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "andes",
		Subsystem: "pipeline",
		Name:      "imported_records_total",
		Help:      "Sub-records written by imports, by category and outcome.",
	}, []string{"category", "outcome"})

	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "andes",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Duration of export, import and backup operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)
