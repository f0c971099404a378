// Package metrics declares the gateway's Prometheus collectors. They are
// registered on the default registry and served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tool invocation metrics
	ToolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_tool_calls_total",
		Help: "Total number of tool invocations by outcome code",
	}, []string{"tool", "outcome"}) // outcome: OK, WARN_QUOTA_ZERO, UPSTREAM_API, ...

	ToolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mappmcp_tool_call_duration_seconds",
		Help:    "Tool invocation duration in seconds, including upstream polling",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"tool"})

	// Upstream token cache metrics
	TokenCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_token_cache_lookups_total",
		Help: "Upstream access token lookups",
	}, []string{"result"}) // result: hit/miss/error

	TokenCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mappmcp_token_cache_entries",
		Help: "Number of cached upstream access tokens",
	})

	// Upstream API metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_upstream_requests_total",
		Help: "Requests sent to the analytics API",
	}, []string{"method", "code"}) // code: HTTP status, or "error" when no response

	// Credential lifecycle metrics
	CredentialOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_credential_operations_total",
		Help: "Credential store operations initiated through the API",
	}, []string{"op", "result"}) // op: save/delete/setup, result: ok/error

	// Linking flow metrics
	LinkFlowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_link_flows_total",
		Help: "Browser linking flow transitions",
	}, []string{"stage"}) // stage: started/completed/failed

	// HTTP edge metrics
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mappmcp_rate_limited_requests_total",
		Help: "Requests rejected with 429 by rate limit profile",
	}, []string{"profile"})
)
