package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakegate_queries_total",
			Help: "Total number of query requests by terminal outcome.",
		},
		[]string{"outcome"},
	)
	queryRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakegate_query_rejections_total",
			Help: "Total number of statements rejected by the read-only gatekeeper, by reason.",
		},
		[]string{"reason"},
	)
	queryTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakegate_query_timeouts_total",
			Help: "Total number of dispatches abandoned at the deadline.",
		},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lakegate_query_duration_seconds",
			Help:    "End-to-end query execution latency in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
	queryRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lakegate_query_rows_returned",
			Help:    "Rows returned per successful query.",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
	)
	queriesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lakegate_queries_in_flight",
			Help: "Engine calls currently occupying worker slots.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		queriesTotal,
		queryRejectionsTotal,
		queryTimeoutsTotal,
		queryDurationSeconds,
		queryRowsReturned,
		queriesInFlight,
	)
}

func ObserveQueryExecuted(elapsed time.Duration, rows int) {
	queriesTotal.WithLabelValues("ok").Inc()
	queryDurationSeconds.Observe(elapsed.Seconds())
	queryRowsReturned.Observe(float64(rows))
}

func IncrementQueryRejected(reason string) {
	queriesTotal.WithLabelValues("rejected").Inc()
	queryRejectionsTotal.WithLabelValues(reason).Inc()
}

func IncrementQueryTimeout() {
	queriesTotal.WithLabelValues("timeout").Inc()
	queryTimeoutsTotal.Inc()
}

func IncrementQueryError() {
	queriesTotal.WithLabelValues("error").Inc()
}

func SetQueriesInFlight(current int) {
	queriesInFlight.Set(float64(current))
}
