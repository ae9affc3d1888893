// Package metrics registers the Prometheus metrics used by the proxy.
// The root package increments them; the server entry point exposes them
// through promhttp on the optional metrics listener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResponsesTotal counts responses sent to clients, labelled by cache
	// status ("hit", "miss", "error").
	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecache_responses_total",
			Help: "Total number of responses sent to clients by cache status.",
		},
		[]string{"status"},
	)

	// UpstreamErrors counts upstream fetch failures by kind
	// ("unavailable", "stream").
	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecache_upstream_errors_total",
			Help: "Total upstream fetch failures by kind.",
		},
		[]string{"kind"},
	)
)
