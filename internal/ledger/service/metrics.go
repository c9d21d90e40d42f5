package service

import (
	"github.com/avbelov/mini-ledger/backend/internal/observability/metrics"
)

func incrementAccountsRegistered() {
	metrics.AccountsRegistered.Inc()
}

func incrementLogins() {
	metrics.LoginsTotal.Inc()
}

func incrementTransfers(amount int64) {
	metrics.TransfersTotal.Inc()
	metrics.TransferAmountTotal.Add(float64(amount))
}

func incrementAdminAdjustments(direction AdjustDirection) {
	metrics.AdminAdjustmentsTotal.WithLabelValues(string(direction)).Inc()
}

func incrementAccountsDeleted() {
	metrics.AccountsDeleted.Inc()
}

func incrementSnapshotSaves() {
	metrics.SnapshotSavesTotal.Inc()
}

func incrementSnapshotSaveFailures() {
	metrics.SnapshotSaveFailures.Inc()
}
