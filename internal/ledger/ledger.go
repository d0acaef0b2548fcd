// Package ledger records every balance mutation as an append-only
// transaction row.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/money"
	"github.com/simnotice/simnotice/internal/repository"
)

var (
	ErrInvalidAmount   = errors.New("ledger: amount must be positive")
	ErrBalanceMismatch = errors.New("ledger: balances do not match amount")
	ErrUnknownCard     = errors.New("ledger: unknown sim card")
	ErrUnknownKind     = errors.New("ledger: unknown transaction type")
)

const DefaultRechargeDescription = "manual recharge"

type Service struct {
	txns  TransactionStore
	cards CardStore
	log   *slog.Logger
}

func NewService(txns TransactionStore, cards CardStore, log *slog.Logger) *Service {
	return &Service{txns: txns, cards: cards, log: log}
}

// Record validates and appends one transaction, returning it with its
// assigned ID. A row whose previous and new balance are equal records an
// attempt that did not move money.
func (s *Service) Record(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	const op = "ledger.Record"

	if err := validate(tx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.txns.Insert(ctx, &tx); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, fmt.Errorf("%s: sim %d: %w", op, tx.SimID, ErrUnknownCard)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("transaction recorded",
		sl.String("op", op),
		sl.Any("id", tx.ID),
		sl.Any("sim_id", tx.SimID),
		sl.String("type", string(tx.Kind)),
		sl.String("amount", money.Format(tx.Amount)),
	)
	return &tx, nil
}

func validate(tx domain.Transaction) error {
	if tx.Kind != domain.KindDeduct && tx.Kind != domain.KindAdd {
		return fmt.Errorf("%w: %q", ErrUnknownKind, tx.Kind)
	}
	if tx.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if tx.PreviousBalance.Equal(tx.NewBalance) {
		return nil
	}

	want := money.Sub(tx.PreviousBalance, tx.Amount)
	if tx.Kind == domain.KindAdd {
		want = money.Add(tx.PreviousBalance, tx.Amount)
	}
	if !want.Equal(tx.NewBalance) {
		return fmt.Errorf("%w: %s %s %s != %s", ErrBalanceMismatch,
			money.Format(tx.PreviousBalance), tx.Kind, money.Format(tx.Amount), money.Format(tx.NewBalance))
	}
	return nil
}

// Recharge credits amount to the card and records an "add" transaction.
func (s *Service) Recharge(ctx context.Context, simID int64, amount decimal.Decimal, description string) (*domain.Transaction, error) {
	const op = "ledger.Recharge"

	amount = money.Round(amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultRechargeDescription
	}

	card, err := s.cards.GetByID(ctx, simID)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, fmt.Errorf("%s: sim %d: %w", op, simID, ErrUnknownCard)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	newBalance := money.Add(card.Balance, amount)
	ok, err := s.cards.UpdateBalance(ctx, simID, newBalance)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: sim %d: %w", op, simID, ErrUnknownCard)
	}

	tx, err := s.Record(ctx, domain.Transaction{
		SimID:           card.ID,
		PhoneNumber:     card.PhoneNumber,
		Amount:          amount,
		Kind:            domain.KindAdd,
		Description:     description,
		PreviousBalance: card.Balance,
		NewBalance:      newBalance,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("card recharged",
		sl.String("op", op),
		sl.String("phone_number", card.PhoneNumber),
		sl.String("previous_balance", money.Format(card.Balance)),
		sl.String("new_balance", money.Format(newBalance)),
	)
	return tx, nil
}
