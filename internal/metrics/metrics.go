package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)

	// TripTransitions counts lifecycle transitions by action and outcome.
	TripTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trip_transitions_total", Help: "Trip lifecycle transitions by action and result."},
		[]string{"action", "result"},
	)

	// StoreDuration records trip/reference store operation latency in seconds.
	StoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "store_operation_duration_seconds", Help: "Store operation duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"backend", "op", "result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(TripTransitions)
		Registry.MustRegister(StoreDuration)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// ObserveStore starts timing a store operation. Call the returned func with
// a pointer to the operation's named error result:
//
//	defer metrics.ObserveStore("kv", "trips.update")(&err)
func ObserveStore(backend, op string) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		result := "ok"
		if errp != nil && *errp != nil {
			result = "error"
		}
		StoreDuration.WithLabelValues(backend, op, result).Observe(time.Since(start).Seconds())
	}
}
