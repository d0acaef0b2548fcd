package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/notify"
)

// CardStore loads due cards and persists new balances.
//
//go:generate mockgen -destination=mocks/mock_billing.go -source=interface.go
type CardStore interface {
	GetCardsDueOn(ctx context.Context, day int) ([]domain.SimCard, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) (bool, error)
}

// Ledger appends transaction rows.
type Ledger interface {
	Record(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
}

// SettingsStore reads notification settings.
type SettingsStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
}

// Notifier delivers a card notification on the resolved channels.
type Notifier interface {
	NotifyLowBalance(ctx context.Context, card domain.SimCard, ch domain.Channels) []notify.Result
}
