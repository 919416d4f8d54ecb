// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SectionDuration observes how long each report section took to
	// assemble, including its upstream fetches.
	SectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qcbot_section_duration_seconds",
		Help:    "Time spent assembling each report section.",
		Buckets: prometheus.DefBuckets,
	}, []string{"section"})

	// SectionFailures counts sections that rendered a placeholder instead
	// of data.
	SectionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qcbot_section_failures_total",
		Help: "Report sections that failed to retrieve their data.",
	}, []string{"section"})

	// UpstreamRequests counts requests to the third-party APIs by outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qcbot_upstream_requests_total",
		Help: "Requests issued to upstream APIs.",
	}, []string{"service", "outcome"})

	// MessagesDelivered counts chat messages posted, including chunks of a
	// split report.
	MessagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qcbot_messages_delivered_total",
		Help: "Chat messages posted to the delivery transport.",
	}, []string{"outcome"})
)

// ObserveUpstream records one upstream request outcome.
func ObserveUpstream(service string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
}
