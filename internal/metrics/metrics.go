// Chanscribe - Real-Time Slack Channel Archiver
// Copyright 2026 Chanscribe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chanscribe/chanscribe

// Package metrics provides Prometheus instrumentation for Chanscribe:
// transport health, pipeline throughput, profile lookups, and archive
// writes. All metrics are registered on the default registry and served by
// the ops endpoint at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transport metrics

	SocketConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chanscribe_socket_connected",
			Help: "1 when the Socket Mode connection is established, 0 otherwise",
		},
	)

	SocketReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_socket_reconnects_total",
			Help: "Total number of Socket Mode reconnection attempts",
		},
	)

	EnvelopesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chanscribe_envelopes_received_total",
			Help: "Total envelopes received from the Socket Mode stream",
		},
		[]string{"type"}, // events_api, interactive, hello, disconnect, unknown
	)

	EnvelopesAcked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_envelopes_acked_total",
			Help: "Total envelope acknowledgments sent back to the transport",
		},
	)

	// Pipeline metrics

	EventsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_events_accepted_total",
			Help: "Total events that passed the filter and entered enrichment",
		},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chanscribe_events_dropped_total",
			Help: "Total events dropped by the pipeline",
		},
		[]string{"reason"}, // filtered, duplicate
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chanscribe_ingest_queue_depth",
			Help: "Current number of envelopes waiting in the ingest queue",
		},
	)

	// Profile lookup metrics

	ProfileLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chanscribe_profile_lookups_total",
			Help: "Total profile lookups by outcome",
		},
		[]string{"outcome"}, // success, failure, rejected
	)

	ProfileLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chanscribe_profile_lookup_duration_seconds",
			Help:    "Duration of users.info lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Archive store metrics

	RecordsAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_records_appended_total",
			Help: "Total records durably appended to the archive file",
		},
	)

	AppendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_append_failures_total",
			Help: "Total append operations that failed even after recovery",
		},
	)

	StoreRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chanscribe_store_recoveries_total",
			Help: "Total times an unparseable archive was replaced by a fresh one",
		},
	)

	AppendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chanscribe_append_duration_seconds",
			Help:    "Duration of archive append operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Circuit breaker metrics (profile lookup breaker)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chanscribe_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chanscribe_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
