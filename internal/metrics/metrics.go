package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CheckCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "easycheck_check_cycles_total",
			Help: "Total number of completed status check cycles",
		},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "easycheck_check_cycle_duration_seconds",
			Help:    "Duration of full status check cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	FailingChecks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "easycheck_failing_checks",
			Help: "Number of checks failing in the latest cycle",
		},
	)

	CheckFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easycheck_check_failures_total",
			Help: "Total failures per check since process start",
		},
		[]string{"check"},
	)
)

func init() {
	prometheus.MustRegister(CheckCycles, CycleDuration, FailingChecks, CheckFailures)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
