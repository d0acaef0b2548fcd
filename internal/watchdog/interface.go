package watchdog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/notify"
)

// CardStore finds cards that need a balance alert.
//
//go:generate mockgen -destination=mocks/mock_watchdog.go -source=interface.go
type CardStore interface {
	GetBelowThreshold(ctx context.Context, threshold decimal.Decimal) ([]domain.SimCard, error)
}

// SettingsStore reads notification settings.
type SettingsStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
}

// Notifier delivers a card notification on the resolved channels.
type Notifier interface {
	NotifyLowBalance(ctx context.Context, card domain.SimCard, ch domain.Channels) []notify.Result
}
