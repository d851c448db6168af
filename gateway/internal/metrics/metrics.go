package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skydock_gateway_requests_total",
		Help: "Total requests handled by the gateway, by outcome.",
	}, []string{"outcome"})

	UnknownSubdomains = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skydock_gateway_unknown_subdomains_total",
		Help: "Requests for subdomains with no matching project.",
	})

	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skydock_gateway_resolve_duration_seconds",
		Help:    "Time spent resolving a subdomain to a project.",
		Buckets: prometheus.DefBuckets,
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skydock_gateway_resolver_cache_hits_total",
		Help: "Subdomain lookups served from the cache.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skydock_gateway_resolver_cache_misses_total",
		Help: "Subdomain lookups that fell through to the database.",
	})

	UpstreamErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skydock_gateway_upstream_errors_total",
		Help: "Failed fetches from the artifact origin.",
	})
)
