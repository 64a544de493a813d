// Package metrics exposes Prometheus counters for the presence engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	observationsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "observations_accepted_total",
		Help:      "Observations that superseded the stored record, by source.",
	}, []string{"source"})

	observationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "observations_rejected_total",
		Help:      "Stale or tie-losing observations, by source.",
	}, []string{"source"})

	subscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "stream_subscribers_dropped_total",
		Help:      "Subscribers disconnected for not keeping up with the fan-out.",
	})

	updateRequestsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "update_requests_throttled_total",
		Help:      "Status refresh requests rejected by the per-faculty window cap.",
	})
)

func ObservationAccepted(source string) { observationsAccepted.WithLabelValues(source).Inc() }
func ObservationRejected(source string) { observationsRejected.WithLabelValues(source).Inc() }
func SubscriberDropped() { subscribersDropped.Inc() }
func UpdateRequestThrottled() { updateRequestsThrottled.Inc() }
