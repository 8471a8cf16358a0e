// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapturePacketsTotal counts total packets captured by interface
	CapturePacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paned_capture_packets_total",
			Help: "Total number of packets captured",
		},
		[]string{"interface"},
	)

	// DecodeErrorsTotal counts frames that failed L2-L4 decoding
	DecodeErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paned_decode_errors_total",
			Help: "Total number of packet decode errors",
		},
	)

	// PacketsClassifiedTotal counts packets the detector classified by protocol
	PacketsClassifiedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paned_packets_classified_total",
			Help: "Total number of packets classified by the DoS detector",
		},
		[]string{"protocol"},
	)

	// PacketsWhitelistedTotal counts packets dropped by the whitelist
	PacketsWhitelistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paned_packets_whitelisted_total",
			Help: "Total number of packets skipped because the source is whitelisted",
		},
	)

	// IncidentsOpenedTotal counts incidents opened by attack type
	IncidentsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paned_incidents_opened_total",
			Help: "Total number of DoS incidents opened",
		},
		[]string{"type"},
	)

	// IncidentsClosedTotal counts incidents closed by attack type
	IncidentsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paned_incidents_closed_total",
			Help: "Total number of DoS incidents closed",
		},
		[]string{"type"},
	)

	// IncidentRegistrySize tracks the current number of incidents in the registry
	IncidentRegistrySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paned_incident_registry_size",
			Help: "Current number of incidents tracked in the registry",
		},
	)

	// CounterResetsTotal counts window reset ticks
	CounterResetsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paned_counter_resets_total",
			Help: "Total number of per-IP counter window resets",
		},
	)

	// PersistFailuresTotal counts event log write failures
	PersistFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paned_persist_failures_total",
			Help: "Total number of incident persistence failures",
		},
	)

	// NotifyFailuresTotal counts notification delivery failures
	NotifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paned_notify_failures_total",
			Help: "Total number of notification delivery failures",
		},
	)
)
