package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"logsearch-backend/internal/model"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsearch_searches_total",
			Help: "Searches by outcome (ok, store_unavailable, cancelled, invalid)",
		},
		[]string{"outcome"},
	)
	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logsearch_search_duration_seconds",
			Help:    "Wall time of completed searches",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
	)
	objectsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsearch_objects_scanned_total",
			Help: "Log objects loaded by searches",
		},
	)
	recordsReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsearch_records_returned_total",
			Help: "Records returned by searches",
		},
	)
	skippedUnits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logsearch_skipped_units_total",
			Help: "Objects, lines and records skipped during searches, by failure kind",
		},
		[]string{"kind"},
	)
	storeUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logsearch_store_up",
			Help: "1 when the last object store probe succeeded",
		},
	)
	storeObjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "logsearch_store_objects",
			Help: "Log objects seen by the last successful probe",
		},
	)
	archivedObjects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsearch_archived_objects_total",
			Help: "Objects written by the archiver",
		},
	)
	archivedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logsearch_archived_records_total",
			Help: "Log lines written by the archiver",
		},
	)
)

func ObserveSearch(outcome string, elapsed time.Duration, scanned, returned int) {
	searchesTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		searchDuration.Observe(elapsed.Seconds())
	}
	objectsScanned.Add(float64(scanned))
	recordsReturned.Add(float64(returned))
}

func ObserveDiagnostics(diags []model.Diagnostic) {
	for _, d := range diags {
		skippedUnits.WithLabelValues(d.KindName()).Inc()
	}
}

func ObserveProbe(ok bool, objects int) {
	if !ok {
		storeUp.Set(0)
		return
	}
	storeUp.Set(1)
	storeObjects.Set(float64(objects))
}

func ObserveArchive(records int) {
	archivedObjects.Inc()
	archivedRecords.Add(float64(records))
}
