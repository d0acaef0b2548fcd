package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
)

// TransactionStore persists ledger rows.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=interface.go
type TransactionStore interface {
	Insert(ctx context.Context, tx *domain.Transaction) error
}

// CardStore reads and updates card balances for recharges.
type CardStore interface {
	GetByID(ctx context.Context, id int64) (*domain.SimCard, error)
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) (bool, error)
}
