package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerRowsCreated counts ledger rows created by the watcher
	LedgerRowsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_ledger_rows_created_total",
			Help: "Total number of ledger rows created",
		},
		[]string{"network", "status"},
	)

	// StatusTransitions counts applied ledger status transitions
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_status_transitions_total",
			Help: "Total number of ledger status transitions",
		},
		[]string{"from", "to"},
	)

	// TransferAmount tracks the amount of tokens bridged, in token units
	TransferAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_transfer_amount",
			Help:    "Amount of tokens burned for bridging",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10, 100, 1000, 10000},
		},
		[]string{"source", "target"},
	)

	// SettlementDuration tracks time from burn sighting to completion
	SettlementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_settlement_duration_seconds",
			Help:    "Time from ledger row creation to completion",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"target"},
	)

	// RelaySubmissions counts relay submissions by result
	RelaySubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_submissions_total",
			Help: "Total number of relay submissions",
		},
		[]string{"network", "path", "result"},
	)

	// RelayPolls counts relay status polls by outcome bucket
	RelayPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_relay_polls_total",
			Help: "Total number of relay task status polls",
		},
		[]string{"bucket"},
	)

	// RelayRequestDuration tracks relay API latency
	RelayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_relay_request_duration_seconds",
			Help:    "Relay API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RateLimitDeferrals counts jobs deferred by the outbound rate limiter
	RateLimitDeferrals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_rate_limit_deferrals_total",
			Help: "Total number of jobs deferred by the relay rate limit",
		},
		[]string{"component"},
	)

	// RecoveryAttempts counts recovery resubmissions
	RecoveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_recovery_attempts_total",
			Help: "Total number of recovery resubmissions",
		},
		[]string{"result"},
	)

	// RecoveryExhausted counts rows that ran out of recovery attempts
	RecoveryExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_recovery_exhausted_total",
			Help: "Total number of transfers left FAILED after the recovery ceiling",
		},
	)

	// EventsDetected counts token events seen on each chain
	EventsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_events_detected_total",
			Help: "Total number of bridge events detected",
		},
		[]string{"network", "event_type"},
	)

	// GapScanBlocks counts blocks re-scanned after a reconnection
	GapScanBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_gap_scan_blocks_total",
			Help: "Total number of blocks re-scanned for missed events",
		},
		[]string{"network"},
	)

	// Reconnects counts chain reconnection attempts
	Reconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_watcher_reconnects_total",
			Help: "Total number of chain reconnection attempts",
		},
		[]string{"network", "endpoint"},
	)

	// EndpointSwitches counts promotions to the fallback RPC and returns to the primary
	EndpointSwitches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_watcher_endpoint_switches_total",
			Help: "Total number of switches between primary and fallback RPC endpoints",
		},
		[]string{"network", "to"},
	)

	// ConnectionHealthy reports per-chain connection health
	ConnectionHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_watcher_connection_healthy",
			Help: "Chain connection health (1 = healthy, 0 = unhealthy)",
		},
		[]string{"network"},
	)

	// LastProcessedBlock tracks the watcher's cursor per chain
	LastProcessedBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_watcher_last_processed_block",
			Help: "Last block fully processed by the watcher",
		},
		[]string{"network"},
	)

	// QueueJobs counts job outcomes
	QueueJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_queue_jobs_total",
			Help: "Total number of processed queue jobs by outcome",
		},
		[]string{"type", "outcome"},
	)

	// SweptRows counts rows re-enqueued by the stale-row sweeper
	SweptRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_swept_rows_total",
			Help: "Total number of stale ledger rows re-enqueued",
		},
		[]string{"status"},
	)
)
