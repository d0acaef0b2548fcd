// Package billing deducts monthly fees from SIM cards due today.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simnotice/simnotice/internal/domain"
	"github.com/simnotice/simnotice/internal/lib/logger/sl"
	"github.com/simnotice/simnotice/internal/money"
	"github.com/simnotice/simnotice/internal/template"
)

const (
	descDeducted       = "auto monthly fee deduction"
	descFailedPrefix   = "auto-deduction failed: "
	reasonInsufficient = "insufficient balance"
	reasonCardNotFound = "card not found"
)

// RunResult summarises one billing run.
type RunResult struct {
	RunID             string                  `json:"run_id"`
	Day               int                     `json:"day"`
	Success           int                     `json:"success"`
	InsufficientFunds int                     `json:"insufficient_funds"`
	Failed            int                     `json:"failed"`
	Outcomes          []domain.BillingOutcome `json:"outcomes"`
}

func (r *RunResult) add(o domain.BillingOutcome) {
	switch o.Kind {
	case domain.OutcomeDeducted:
		r.Success++
	case domain.OutcomeInsufficientFunds:
		r.InsufficientFunds++
	default:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

type Options struct {
	// Recipient receives email notifications.
	Recipient string
	// DefaultThreshold applies when settings carry no usable threshold.
	DefaultThreshold decimal.Decimal
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine runs the monthly fee deduction.
type Engine struct {
	cards    CardStore
	ledger   Ledger
	settings SettingsStore
	notifier Notifier
	opts     Options
	log      *slog.Logger
}

func NewEngine(cards CardStore, ledger Ledger, settings SettingsStore, notifier Notifier, opts Options, log *slog.Logger) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultThreshold.IsZero() {
		opts.DefaultThreshold = decimal.NewFromInt(10)
	}
	return &Engine{
		cards:    cards,
		ledger:   ledger,
		settings: settings,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

// Run processes every card due today. Cards are independent: a failure on
// one is recorded in its outcome and the run moves on. The only error
// returned is a failure to load the due cards.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	const op = "billing.Run"

	day := e.opts.Now().Day()
	res := &RunResult{RunID: uuid.NewString(), Day: day, Outcomes: []domain.BillingOutcome{}}
	log := e.log.With(sl.String("op", op), sl.String("run_id", res.RunID), sl.Any("day", day))

	raw, err := e.settings.GetMany(ctx, domain.NotificationKeys)
	if err != nil {
		log.Error("failed to load settings, using defaults", sl.Err(err))
		raw = map[string]string{}
	}
	settings := domain.ParseNotificationSettings(raw)
	threshold := settings.Threshold(e.opts.DefaultThreshold)
	channels := settings.Channels(e.opts.Recipient)

	cards, err := e.cards.GetCardsDueOn(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("%s: load due cards: %w", op, err)
	}
	if len(cards) == 0 {
		log.Info("no cards due today")
		return res, nil
	}

	log.Info("billing run started",
		sl.Any("cards", len(cards)),
		sl.String("threshold", money.Format(threshold)),
		sl.Any("email", channels.Email),
		sl.Any("wechat", channels.Wechat),
	)

	for _, card := range cards {
		res.add(e.processCard(ctx, card, threshold, channels))
	}

	log.Info("billing run finished",
		sl.Any("success", res.Success),
		sl.Any("insufficient_funds", res.InsufficientFunds),
		sl.Any("failed", res.Failed),
	)
	return res, nil
}

func (e *Engine) processCard(ctx context.Context, card domain.SimCard, threshold decimal.Decimal, ch domain.Channels) (out domain.BillingOutcome) {
	log := e.log.With(sl.String("phone_number", card.PhoneNumber), sl.Any("sim_id", card.ID))

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while billing card", sl.Any("panic", p))
			out = domain.Failed(card, fmt.Sprintf("panic: %v", p))
		}
	}()

	if card.Balance.LessThan(card.MonthlyFee) {
		e.record(ctx, log, card, card.Balance, descFailedPrefix+reasonInsufficient)
		log.Warn("insufficient balance",
			sl.String("balance", money.Format(card.Balance)),
			sl.String("monthly_fee", money.Format(card.MonthlyFee)),
		)

		failedCh := ch
		failedCh.EmailSubject = template.DeductionFailedSubject
		e.notify(ctx, log, card, failedCh)
		return domain.InsufficientFunds(card)
	}

	newBalance := money.Sub(card.Balance, card.MonthlyFee)

	persisted, err := e.cards.UpdateBalance(ctx, card.ID, newBalance)
	if err != nil {
		log.Error("failed to update balance", sl.Err(err))
		e.record(ctx, log, card, card.Balance, descFailedPrefix+err.Error())
		return domain.Failed(card, err.Error())
	}
	if !persisted {
		log.Error("card disappeared before deduction")
		e.record(ctx, log, card, card.Balance, descFailedPrefix+reasonCardNotFound)
		return domain.Failed(card, reasonCardNotFound)
	}

	e.record(ctx, log, card, newBalance, descDeducted)
	log.Info("monthly fee deducted",
		sl.String("previous_balance", money.Format(card.Balance)),
		sl.String("new_balance", money.Format(newBalance)),
	)

	if newBalance.LessThan(threshold) {
		e.notify(ctx, log, card.WithBalance(newBalance), ch)
	}
	return domain.Deducted(card, newBalance)
}

// record writes the deduction row. Ledger failures are logged only, since
// the balance change, if any, already happened.
func (e *Engine) record(ctx context.Context, log *slog.Logger, card domain.SimCard, newBalance decimal.Decimal, desc string) {
	_, err := e.ledger.Record(ctx, domain.Transaction{
		SimID:           card.ID,
		PhoneNumber:     card.PhoneNumber,
		Amount:          card.MonthlyFee,
		Kind:            domain.KindDeduct,
		Description:     desc,
		PreviousBalance: card.Balance,
		NewBalance:      newBalance,
	})
	if err == nil {
		return
	}
	if !newBalance.Equal(card.Balance) {
		log.Error("balance changed but ledger row is missing",
			sl.Err(err),
			sl.String("previous_balance", money.Format(card.Balance)),
			sl.String("new_balance", money.Format(newBalance)),
			sl.String("description", desc),
		)
		return
	}
	log.Error("failed to record transaction", sl.Err(err), sl.String("description", desc))
}

func (e *Engine) notify(ctx context.Context, log *slog.Logger, card domain.SimCard, ch domain.Channels) {
	if !ch.Any() {
		return
	}
	for _, r := range e.notifier.NotifyLowBalance(ctx, card, ch) {
		if !r.Success {
			log.Warn("notification failed", sl.String("channel", string(r.Channel)), sl.String("error", r.Error))
		}
	}
}
