package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	votesTotal        prometheus.Counter
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the pollboard API.",
		}, []string{"method", "path", "status"})

		votesTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "votes_total",
			Help:      "Total votes accepted across all polls.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncVote increments the accepted-votes counter.
func IncVote() {
	if votesTotal == nil {
		return
	}
	votesTotal.Inc()
}
