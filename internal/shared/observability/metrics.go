package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscan_scan_seconds",
		Help:    "Time spent scanning a single source or descriptor file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	FilesScannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_files_scanned_total",
		Help: "Total number of files scanned for imports.",
	}, []string{"kind"})

	ScanWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depscan_scan_warnings_total",
		Help: "Total number of recoverable warnings raised during scanning.",
	}, []string{"reason"})

	ImportsDiscovered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depscan_imports_discovered_total",
		Help: "Number of distinct import occurrences found in the last pass.",
	})

	ResolutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depscan_resolution_seconds",
		Help:    "Time spent on high-level resolution stages.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	RequirementsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depscan_requirements_dropped_total",
		Help: "Total number of discovered names dropped as unparsable requirements.",
	})
)
