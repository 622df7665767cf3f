package obs

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	storeActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_actions_total",
			Help: "Total number of resource store actions.",
		},
		[]string{"store", "action", "outcome"},
	)

	storeFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_fetch_duration_seconds",
			Help:    "Resource store fetch latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store"},
	)
)

// Init registers metrics with the default registry.
func Init() {
	prometheus.MustRegister(storeActionsTotal, storeFetchDuration)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAction records the outcome of a store action.
func ObserveAction(store, action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeActionsTotal.WithLabelValues(store, action, outcome).Inc()
}

// ObserveFetch records a fetch latency.
func ObserveFetch(store string, start time.Time) {
	storeFetchDuration.WithLabelValues(store).Observe(time.Since(start).Seconds())
}
