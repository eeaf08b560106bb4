package application

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type dispatchMetrics struct {
	dispatched *prometheus.CounterVec
	failed     *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *dispatchMetrics
)

// metrics registers the dispatch counters once on the default registry.
func metrics() *dispatchMetrics {
	metricsOnce.Do(func() {
		sharedMetrics = &dispatchMetrics{
			dispatched: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "notifications_dispatched_total",
				Help: "Notifications delivered, by kind and channel.",
			}, []string{"kind", "channel"}),
			failed: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "notifications_failed_total",
				Help: "Notification delivery failures, by kind and stage.",
			}, []string{"kind", "stage"}),
		}
	})
	return sharedMetrics
}
