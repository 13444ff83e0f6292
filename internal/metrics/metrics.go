// Package metrics exposes prometheus instruments for dataset navigation.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pueonav_runs_loaded_total",
			Help: "Total runs loaded successfully",
		},
	)

	RunLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueonav_run_load_failures_total",
			Help: "Total failed run loads by reason",
		},
		[]string{"reason"},
	)

	CurrentRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pueonav_current_run",
			Help: "Run most recently loaded by any dataset",
		},
	)

	EntriesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueonav_entries_read_total",
			Help: "Total records decoded by kind",
		},
		[]string{"kind"},
	)

	IndexBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueonav_runindex_builds_total",
			Help: "Cross-run index builds by table and source (cache or scan)",
		},
		[]string{"table", "source"},
	)

	IndexLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueonav_runindex_lookups_total",
			Help: "Cross-run index lookups by table and result",
		},
		[]string{"table", "result"},
	)

	IndexRuns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pueonav_runindex_runs",
			Help: "Runs known to the cross-run index",
		},
		[]string{"table", "version"},
	)

	Substitutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueonav_blind_substitutions_total",
			Help: "Records replaced from the blind store by polarization and kind",
		},
		[]string{"pol", "kind"},
	)

	PolarityInversions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pueonav_blind_polarity_inversions_total",
			Help: "Events whose polarity was inverted",
		},
	)

	Invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pueonav_runindex_invalidations_total",
			Help: "Cross-run index invalidations triggered by data root changes",
		},
	)
)

// SetIndexRuns records the size of a built cross-run table.
func SetIndexRuns(table string, version, n int) {
	IndexRuns.WithLabelValues(table, strconv.Itoa(version)).Set(float64(n))
}
