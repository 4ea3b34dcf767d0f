package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	operationsTotal   *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
// Until it is called the Inc/Observe functions are no-ops.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the account API.",
		}, []string{"method", "path", "status"})
		operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "accounts",
			Name:      "user_operations_total",
			Help:      "User lifecycle operations by outcome kind.",
		}, []string{"operation", "outcome"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ObserveOperation counts one lifecycle operation; outcome is "ok" or an error kind.
func ObserveOperation(operation, outcome string) {
	if operationsTotal == nil {
		return
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}
