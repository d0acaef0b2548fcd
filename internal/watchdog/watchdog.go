// Package watchdog sweeps all cards for low balances and alerts on them.
// It never changes a balance and never writes to the ledger.
package watchdog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/money"
)

// SweepResult summarises one sweep.
type SweepResult struct {
	RunID     string `json:"run_id"`
	Threshold string `json:"threshold"`
	Skipped   bool   `json:"skipped"`
	Checked   int    `json:"checked"`
	Notified  int    `json:"notified"`
	Failed    int    `json:"failed"`
	// Phones lists the cards that were alerted on, lowest balance first.
	Phones []string `json:"phones"`
}

type Service struct {
	cards            CardStore
	settings         SettingsStore
	notifier         Notifier
	recipient        string
	defaultThreshold decimal.Decimal
	log              *slog.Logger
}

func NewService(cards CardStore, settings SettingsStore, notifier Notifier, recipient string, defaultThreshold decimal.Decimal, log *slog.Logger) *Service {
	if defaultThreshold.IsZero() {
		defaultThreshold = decimal.NewFromInt(10)
	}
	return &Service{
		cards:            cards,
		settings:         settings,
		notifier:         notifier,
		recipient:        recipient,
		defaultThreshold: defaultThreshold,
		log:              log,
	}
}

// Run resolves the threshold from settings and sweeps. When no channel is
// active the sweep is skipped.
func (s *Service) Run(ctx context.Context) (*SweepResult, error) {
	const op = "watchdog.Run"

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.sweep(ctx, settings.Threshold(s.defaultThreshold), settings.Channels(s.recipient))
}

// Sweep alerts on every card with balance < monthly_fee or
// balance < threshold, using the channels configured in settings.
func (s *Service) Sweep(ctx context.Context, threshold decimal.Decimal) (*SweepResult, error) {
	const op = "watchdog.Sweep"

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.sweep(ctx, threshold, settings.Channels(s.recipient))
}

func (s *Service) loadSettings(ctx context.Context) (domain.NotificationSettings, error) {
	raw, err := s.settings.GetMany(ctx, domain.NotificationKeys)
	if err != nil {
		return domain.NotificationSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return domain.ParseNotificationSettings(raw), nil
}

func (s *Service) sweep(ctx context.Context, threshold decimal.Decimal, ch domain.Channels) (*SweepResult, error) {
	const op = "watchdog.sweep"

	res := &SweepResult{RunID: uuid.NewString(), Threshold: money.Format(threshold), Phones: []string{}}
	log := s.log.With(sl.String("op", op), sl.String("run_id", res.RunID))

	if !ch.Any() {
		log.Info("all notification channels disabled, skipping sweep")
		res.Skipped = true
		return res, nil
	}

	cards, err := s.cards.GetBelowThreshold(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("%s: load cards: %w", op, err)
	}
	res.Checked = len(cards)

	log.Info("balance sweep started",
		sl.String("threshold", res.Threshold),
		sl.Any("cards", len(cards)),
	)

	for _, card := range cards {
		if s.notifyCard(ctx, log, card, ch) {
			res.Notified++
			res.Phones = append(res.Phones, card.PhoneNumber)
		} else {
			res.Failed++
		}
	}

	log.Info("balance sweep finished", sl.Any("notified", res.Notified), sl.Any("failed", res.Failed))
	return res, nil
}

// notifyCard reports whether at least one channel accepted the message.
func (s *Service) notifyCard(ctx context.Context, log *slog.Logger, card domain.SimCard, ch domain.Channels) (ok bool) {
	log = log.With(sl.String("phone_number", card.PhoneNumber))

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while notifying", sl.Any("panic", p))
			ok = false
		}
	}()

	for _, r := range s.notifier.NotifyLowBalance(ctx, card, ch) {
		if r.Success {
			ok = true
			continue
		}
		log.Warn("notification failed", sl.String("channel", string(r.Channel)), sl.String("error", r.Error))
	}
	return ok
}
