package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Consumer metrics
	EventsConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_events_consumed_total",
			Help: "Total number of log events consumed from the bus",
		},
	)

	EventsMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_events_malformed_total",
			Help: "Total number of bus messages that could not be parsed as log events",
		},
	)

	// Persistence metrics
	EventsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_events_persisted_total",
			Help: "Total number of log events written to the log store",
		},
	)

	EventsDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_events_duplicate_total",
			Help: "Total number of redelivered events absorbed by the idempotency key",
		},
	)

	PersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_persist_errors_total",
			Help: "Total number of log store write failures",
		},
	)

	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skydock_collector_persist_duration_seconds",
			Help:    "Duration of log store writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Fanout metrics
	FanoutDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_fanout_deliveries_total",
			Help: "Total number of log lines delivered to live subscribers",
		},
	)

	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "skydock_collector_subscribers",
			Help: "Current number of connected live-log subscribers",
		},
	)

	StatusReportErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skydock_collector_status_report_errors_total",
			Help: "Total number of failed deployment status reports",
		},
	)
)
