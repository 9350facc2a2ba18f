package feed_repo

import (
	"dice/internal/domain/feed"
	"dice/internal/infrastructure/storage/postgres"
)

// AlertRepo reads alerts.
type AlertRepo struct {
	*tableRepo[feed.Alert]
}

var _ feed.AlertRepository = (*AlertRepo)(nil)

func NewAlertRepo(txm *postgres.TxManager) *AlertRepo {
	return &AlertRepo{newTableRepo[feed.Alert](txm, "alerts", "created_at DESC, id")}
}

// SignalRepo reads market signals.
type SignalRepo struct {
	*tableRepo[feed.Signal]
}

var _ feed.SignalRepository = (*SignalRepo)(nil)

func NewSignalRepo(txm *postgres.TxManager) *SignalRepo {
	return &SignalRepo{newTableRepo[feed.Signal](txm, "market_signals", "observed_at DESC, id")}
}
