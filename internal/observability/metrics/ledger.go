package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LedgerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_requests_total",
			Help: "Total number of ledger requests",
		},
		[]string{"method", "path"},
	)

	LedgerRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_requests_in_flight",
			Help: "Number of ledger requests currently being processed",
		},
	)

	LedgerRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_request_duration_seconds",
			Help:    "Duration of ledger requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AccountsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_accounts_registered_total",
			Help: "Total number of accounts registered",
		},
	)

	AccountsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_accounts_deleted_total",
			Help: "Total number of accounts deleted by an admin",
		},
	)

	LoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_logins_total",
			Help: "Total number of successful logins",
		},
	)

	TransfersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Total number of completed transfers",
		},
	)

	TransferAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_transfer_amount_total",
			Help: "Total amount moved by completed transfers, in minor units",
		},
	)

	AdminAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_admin_adjustments_total",
			Help: "Total number of admin balance adjustments by direction",
		},
		[]string{"direction"},
	)

	SnapshotSavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_snapshot_saves_total",
			Help: "Total number of ledger snapshot saves",
		},
	)

	SnapshotSaveFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_snapshot_save_failures_total",
			Help: "Total number of failed ledger snapshot saves",
		},
	)
)
